package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "bowlo_nl/internal/adapters/http_server"
	"bowlo_nl/internal/adapters/observability"
	redisad "bowlo_nl/internal/adapters/redis"
	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
	"bowlo_nl/internal/shared"
	"bowlo_nl/internal/storage/memory"
	mysqlrepo "bowlo_nl/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	repo, closeRepo := openStore(ctx, cfg)
	defer closeRepo()

	// a nil domain.Cache disables caching; never pass a typed nil
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed, continuing; cache errors are ignored")
		}
		cache = rc
	}
	q := app.NewCatalogService(repo, cache, cfg.CacheTTL)

	h, err := server.NewHandlers(q, cfg.SiteBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("load templates failed")
	}
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Bool("catalog", q.Configured()).Msg("site listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("site stopped")
}

// openStore picks MySQL, then the JSON seed, then nothing. With nothing the
// site still serves every page in its "not configured" state.
func openStore(ctx context.Context, cfg shared.Config) (domain.CenterRepository, func()) {
	switch {
	case cfg.MySQLDSN != "":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			// queries keep failing until the database is back; pages degrade meanwhile
			log.Error().Err(err).Msg("db.Ping failed")
		} else {
			log.Info().Msg("database connection ok")
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }

	case cfg.SeedFile != "":
		r, err := memory.Load(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("load catalog seed failed")
		}
		log.Info().Str("file", cfg.SeedFile).Msg("serving catalog from seed file")
		return r, func() {}

	default:
		log.Warn().Msg("MYSQL_DSN and CATALOG_SEED_FILE are empty; catalog not configured")
		return nil, func() {}
	}
}
