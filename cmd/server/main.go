// Agreements server: web UI, agreements JSON API, obligations query API and
// MCP endpoint over one encrypted SQLite database and one S3 bucket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/app"
	"github.com/kuitang/agreements-e2e/internal/config"
	"github.com/kuitang/agreements-e2e/internal/db"
	"github.com/kuitang/agreements-e2e/internal/docstore"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/kuitang/agreements-e2e/internal/query"
	"github.com/kuitang/agreements-e2e/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	logger := obs.Pkg("main")

	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}
	cfg.PrintStartupSummary(os.Stdout)

	key, err := db.DeriveDatabaseKey(cfg.MasterKey)
	if err != nil {
		return fmt.Errorf("derive database key: %w", err)
	}

	// Startup finishes even if a shutdown signal arrives meanwhile; the
	// select below then stops the server.
	startCtx := context.WithoutCancel(ctx)

	database, err := db.Open(startCtx, cfg.DatabasePath, key)
	if err != nil {
		return err
	}
	defer database.Close()

	store, stopStore, err := openDocumentStore(startCtx, cfg)
	if err != nil {
		return err
	}
	defer stopStore()

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()

	handler, err := app.NewHandler(app.Deps{
		Agreements: agreements.NewService(database),
		Queries:    query.NewService(store, cfg.QueryDefaultTerm, cfg.QueryMaxTerms),
		Limiter:    limiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDocumentStore connects to the configured bucket, or to an in-memory
// gofakes3 bucket under --no-s3.
func openDocumentStore(ctx context.Context, cfg *config.Config) (*docstore.Client, func(), error) {
	if cfg.NoS3 {
		client, stop, err := docstore.NewInMemory(ctx, "agreements")
		if err != nil {
			return nil, nil, fmt.Errorf("start in-memory S3: %w", err)
		}
		return client, stop, nil
	}

	client, err := docstore.New(ctx, docstore.Config{
		Endpoint:        cfg.AWSEndpointS3,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		BucketName:      cfg.AWSBucketName,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to S3: %w", err)
	}
	return client, func() {}, nil
}
