package main

import (
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpadp "immofin-backend/internal/adapter/http"
	"immofin-backend/internal/adapter/middleware"
	"immofin-backend/internal/config"
	"immofin-backend/internal/infrastructure/cache"
	"immofin-backend/internal/infrastructure/db"
	"immofin-backend/internal/report"
	"immofin-backend/internal/score"
	"immofin-backend/internal/store"
	dossieruc "immofin-backend/internal/usecase/dossier"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading tuning")
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.SQLitePath, cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("opening snapshot database")
	}
	backend, err := store.NewGormBackend(gdb)
	if err != nil {
		log.Fatal().Err(err).Msg("migrating snapshot schema")
	}

	var (
		bus store.Bus = store.NewMemoryBus()
		rdb *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connecting redis")
		}
		bus = store.NewRedisBus(rdb, log)
	}

	st := store.New(backend, bus, cfg.SnapshotKey, log)
	engine := score.NewEngine(tuning.Score)
	u := dossieruc.NewUsecase(st, engine, tuning.Thresholds, report.JSONExporter{}, log)

	h := httpadp.NewHealthHandler("immofin-banque")
	dh := httpadp.NewDossierHandler(u)
	mh := httpadp.NewModuleHandler(u)
	rh := httpadp.NewReportHandler(u)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))

	e.GET("/health", h.Health)

	e.POST("/dossiers", dh.Create)
	e.GET("/dossiers/active", dh.Get)
	e.GET("/snapshot", dh.Snapshot)
	e.PUT("/dossiers", dh.Save)
	e.DELETE("/dossiers/:dossier_id", dh.Delete)

	e.PUT("/modules/risks", mh.PatchRisks)
	e.PUT("/modules/guarantees", mh.PatchGuarantees)
	e.PUT("/modules/documents", mh.PatchDocuments)
	e.PUT("/modules/committee", mh.PatchCommittee)
	e.PUT("/modules/monitoring", mh.PatchMonitoring)
	e.PUT("/modules/market", mh.PatchMarket)

	e.POST("/analysis/rentabilite", rh.ComputeRentabilite)
	e.POST("/analysis/smartscore", rh.GenerateScore)
	e.GET("/guarantees/coverage", rh.GuaranteeCoverage)
	e.POST("/report", rh.Generate)
	e.GET("/report/export", rh.Export)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
