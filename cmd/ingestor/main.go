package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bowlo_nl/internal/adapters/observability"
	"bowlo_nl/internal/adapters/places"
	redisad "bowlo_nl/internal/adapters/redis"
	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
	"bowlo_nl/internal/shared"
	mysqlrepo "bowlo_nl/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	// exposes outbound request metrics when METRICS_ADDR is set
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	ids, err := shared.ReadPlaceIDs(cfg.PlaceIDsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.PlaceIDsFile).Msg("read place ids failed")
	}
	log.Info().
		Str("base", cfg.PlacesBase).
		Int("workers", cfg.Workers).
		Int("rps", cfg.IngestRPS).
		Int("places", len(ids)).
		Msg("ingestor starting")

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for ingestion")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesLang, cfg.IngestRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	// the api's cached pages are evicted only when both share a redis
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}
	ing := app.NewIngestionService(client, repo, cache)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg           sync.WaitGroup
		okN, failedN atomic.Int64
	)

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("ingestion interrupted")
			break
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestCenter(ctx, placeID); err != nil {
				failedN.Add(1)
				log.Warn().Str("place_id", placeID).Err(err).Msg("ingest failed")
				return
			}
			okN.Add(1)
			log.Debug().Str("place_id", placeID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int64("ok", okN.Load()).Int64("failed", failedN.Load()).Msg("ingestion completed")
}
