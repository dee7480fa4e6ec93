package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/genzzone/storefront/internal/adapters/fakestore"
	"github.com/genzzone/storefront/internal/adapters/snapshot"
	"github.com/genzzone/storefront/internal/adapters/storeapi"
	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/checkout/submitlog/sqlite"
	"github.com/genzzone/storefront/internal/config"
	"github.com/genzzone/storefront/internal/httpx"
	"github.com/genzzone/storefront/internal/pkg/telemetry"
	"github.com/genzzone/storefront/internal/ports"
	"github.com/genzzone/storefront/internal/receipt"
	"github.com/genzzone/storefront/internal/storefront"
	"github.com/genzzone/storefront/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.InitLogger(slog.LevelInfo)
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.OTelServiceName,
			Endpoint:    cfg.OTelEndpoint,
			Environment: cfg.OTelEnvironment,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	catalog, orders, err := storeAPI(cfg)
	if err != nil {
		return err
	}

	var snapshots ports.SnapshotStore
	if cfg.RedisAddr != "" {
		store := snapshot.NewRedisStore(cfg.RedisAddr, "storefront", cfg.SnapshotTTL)
		defer store.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			return err
		}
		snapshots = store
		slog.Info("order snapshots in redis", "addr", cfg.RedisAddr, "ttl", cfg.SnapshotTTL)
	} else {
		snapshots = snapshot.NewMemoryStore(cfg.SnapshotTTL)
		slog.Info("order snapshots in memory", "ttl", cfg.SnapshotTTL)
	}

	var submitLog submitlog.Repository
	if cfg.SubmitLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SubmitLogPath), 0o755); err != nil {
			return err
		}
		repo, err := sqlite.Open(cfg.SubmitLogPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		submitLog = repo
	}

	svc := storefront.NewService(storefront.Deps{
		Catalog:   catalog,
		Orders:    orders,
		Snapshots: snapshots,
		Validator: validation.New(cfg.Phone),
		SubmitLog: submitLog,
		Receipts:  receipt.NewGenerator(receipt.Config{Brand: cfg.BrandName, Website: cfg.BrandWebsite}),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(svc, cfg.Locale)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("storefront running", "addr", cfg.HTTPAddr, "store_api", cfg.StoreAPIMode, "phone_format", cfg.Phone.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return svc.RunSweeper(gctx, time.Minute, cfg.DraftIdleTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func storeAPI(cfg *config.Config) (ports.Catalog, ports.OrderAPI, error) {
	if cfg.StoreAPIMode == "fake" {
		slog.Warn("using the in-memory demo store; orders are not persisted")
		store := fakestore.Seeded()
		return store, store, nil
	}
	api, err := storeapi.New(storeapi.Config{BaseURL: cfg.StoreAPIURL, Timeout: cfg.StoreAPITimeout})
	if err != nil {
		return nil, nil, err
	}
	return api, api, nil
}
