package app

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/db"
	"github.com/kuitang/agreements-e2e/internal/docstore"
	"github.com/kuitang/agreements-e2e/internal/query"
	"github.com/kuitang/agreements-e2e/internal/ratelimit"
)

const testBucketName = "agreements-test-bucket"

var testServerCounter atomic.Int64

// TestServer is a fully wired in-process server backed by an in-memory
// database and a gofakes3 bucket.
type TestServer struct {
	Server     *httptest.Server
	BaseURL    string
	Agreements *agreements.Service
	Queries    *query.Service
	Documents  *docstore.Client
	Limiter    *ratelimit.RateLimiter
}

// TestOptions tune StartTestServer. The zero value gives limits high enough
// that no test is throttled.
type TestOptions struct {
	RateLimit ratelimit.Config
}

// StartTestServer starts a TestServer and closes it when t completes.
func StartTestServer(t testing.TB, opts TestOptions) *TestServer {
	t.Helper()

	database, err := db.OpenInMemory(context.Background(), fmt.Sprintf("app-test-%d", testServerCounter.Add(1)))
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := docstore.TestClient(t, testBucketName)

	limitCfg := opts.RateLimit
	if limitCfg.RPS == 0 {
		limitCfg = ratelimit.Config{RPS: 10000, Burst: 100000}
	}
	limiter := ratelimit.NewRateLimiter(limitCfg)
	t.Cleanup(limiter.Stop)

	deps := Deps{
		Agreements: agreements.NewService(database),
		Queries:    query.NewService(store, "", 64),
		Limiter:    limiter,
	}
	handler, err := NewHandler(deps)
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:     server,
		BaseURL:    server.URL,
		Agreements: deps.Agreements,
		Queries:    deps.Queries,
		Documents:  store,
		Limiter:    limiter,
	}
}
