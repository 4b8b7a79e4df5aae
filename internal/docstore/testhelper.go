package docstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/kuitang/agreements-e2e/internal/obs"
)

// TestClient creates a Client backed by gofakes3 for testing.
// The test server is automatically cleaned up when the test completes.
func TestClient(t testing.TB, bucketName string) *Client {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	client, err := fakeClient(context.Background(), ts.URL, bucketName)
	if err != nil {
		t.Fatalf("failed to create fake S3 client: %v", err)
	}
	return client
}

// NewInMemory serves gofakes3 on a loopback port and returns a Client for it.
// Used by the server's --no-s3 mode. Call stop to shut the fake down.
func NewInMemory(ctx context.Context, bucketName string) (client *Client, stop func(), err error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("listen for in-memory S3: %w", err)
	}

	faker := gofakes3.New(s3mem.New())
	srv := &http.Server{Handler: faker.Server(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			obs.Pkg("docstore").Error("in_memory_s3_stopped", "error", serveErr)
		}
	}()
	stop = func() { _ = srv.Close() }

	client, err = fakeClient(ctx, "http://"+listener.Addr().String(), bucketName)
	if err != nil {
		stop()
		return nil, nil, err
	}
	return client, stop, nil
}

func fakeClient(ctx context.Context, endpoint, bucketName string) (*Client, error) {
	sdkConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // Required for gofakes3
	})

	_, err = s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %q: %w", bucketName, err)
	}
	return NewFromS3Client(s3Client, bucketName), nil
}
