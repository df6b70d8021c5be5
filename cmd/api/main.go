package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"passport-admin-go/internal/api"
	"passport-admin-go/internal/api/middleware"
	"passport-admin-go/internal/config"
	"passport-admin-go/internal/domain/passport"
	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/archive"
	"passport-admin-go/internal/pkg/assembler"
	"passport-admin-go/internal/pkg/circuitbreaker"
	"passport-admin-go/internal/pkg/emblem"
	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/gotenberg"
	"passport-admin-go/internal/pkg/imagecache"
	"passport-admin-go/internal/pkg/layout"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/recordstore"
	"passport-admin-go/internal/pkg/tracing"

	"go.uber.org/zap"
)

const (
	sharedImageTTL = 24 * time.Hour
	archivePrefix  = "passports/"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Log.Sync()

	ctx := context.Background()

	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.OTelServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.OTelEnvironment,
		CollectorURL:   cfg.OTelEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("Failed to shut down tracer", zap.Error(err))
		}
	}()

	tables := record.Tables{Applications: cfg.ApplicationsTable, Renewals: cfg.RenewalsTable}
	baseStore, db, err := openStore(ctx, cfg, tables)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}
	store := recordstore.NewStoreWithCircuitBreaker(baseStore, breakerConfig(cfg, "record_store"))
	logger.Info("Record store configured",
		zap.String("backend", cfg.RecordStoreBackend),
		zap.String("applications_table", tables.Applications),
		zap.String("renewals_table", tables.Renewals))

	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.FetchMaxBytes)

	var cacheOpts []imagecache.Option
	redisTier, err := imagecache.NewRedisTier(ctx, cfg.RedisURL, sharedImageTTL)
	if err != nil {
		logger.Warn("Shared image cache disabled", zap.Error(err))
	} else if redisTier != nil {
		defer redisTier.Close()
		cacheOpts = append(cacheOpts, imagecache.WithSharedTier(redisTier))
		logger.Info("Shared image cache enabled")
	}
	images := imagecache.NewCache(fetcher, cacheOpts...)

	coatOfArms := emblem.Load(ctx, fetcher, cfg.WatermarkURL)

	renderer, err := layout.NewRenderer(cfg.RasterScale)
	if err != nil {
		logger.Fatal("Failed to load page templates", zap.Error(err))
	}
	builder := layout.NewBuilder(layout.WithEmblem(imagecache.Encode("image/png", coatOfArms.PNG)))

	gotenbergClient := gotenberg.NewClientWithCircuitBreaker(
		gotenberg.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout),
		breakerConfig(cfg, "gotenberg"),
	)
	asm := assembler.New(assembler.NewHTMLRasterizer(renderer, gotenbergClient), coatOfArms)
	logger.Info("Assembler configured",
		zap.String("gotenberg_url", cfg.GotenbergURL),
		zap.Int("raster_scale", cfg.RasterScale))

	archiver, closeArchive := openArchive(ctx, cfg)
	defer closeArchive()

	service := passport.NewService(
		passport.NewRegistry(store),
		images,
		builder,
		asm,
		fetcher,
		passport.WithArchive(archiver),
	)

	if _, err := service.Refresh(ctx); err != nil {
		// the dashboard retries on first request
		logger.Warn("Initial record load failed", zap.Error(err))
	}

	h := api.NewHandlers(service, gotenbergClient, store)
	server := api.NewServer(h, api.Options{
		RequestTimeout: cfg.RequestTimeout,
		Auth: middleware.AuthConfig{
			Secret:       cfg.AuthJWTSecret,
			RequiredRole: cfg.AuthRole,
		},
	})
	server.SetupRoutes()
	if cfg.AuthJWTSecret == "" {
		logger.Warn("Operator authentication is disabled; set AUTH_JWT_SECRET to enable it")
	}

	if err := server.Start(cfg.HTTPAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, tables record.Tables) (recordstore.Store, *sql.DB, error) {
	if cfg.RecordStoreBackend == config.BackendPostgres {
		db, err := recordstore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return recordstore.NewPostgresStore(db, tables), db, nil
	}
	return recordstore.NewRESTStore(cfg.SupabaseURL, cfg.SupabaseAPIKey, tables, cfg.FetchTimeout), nil, nil
}

func openArchive(ctx context.Context, cfg *config.Config) (*archive.Archiver, func()) {
	var sinks []archive.Sink
	closeFn := func() {}

	dir, err := archive.NewDirSink(cfg.ArchiveDir)
	if err != nil {
		logger.Warn("Directory archive disabled", zap.Error(err))
	} else if dir != nil {
		sinks = append(sinks, dir)
	}

	gcs, err := archive.NewGCSSink(ctx, cfg.ArchiveGCSBucket, archivePrefix)
	if err != nil {
		logger.Warn("GCS archive disabled", zap.Error(err))
	} else if gcs != nil {
		sinks = append(sinks, gcs)
		closeFn = func() { _ = gcs.Close() }
	}

	a := archive.New(sinks...)
	logger.Info("Archive configured", zap.Bool("enabled", a.Enabled()), zap.Int("sinks", len(sinks)))
	return a, closeFn
}

func breakerConfig(cfg *config.Config, name string) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             name,
		FailureThreshold: cfg.BreakerFailureThreshold,
		ResetTimeout:     cfg.BreakerResetTimeout,
		HalfOpenMaxCalls: cfg.BreakerHalfOpenMaxCalls,
		SuccessThreshold: cfg.BreakerSuccessThreshold,
	}
}
