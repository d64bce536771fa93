// Package main is the entry point for the zoning feasibility engine. It
// wires the rule store, analysis pipeline, persistence, maintenance jobs and
// HTTP API together and runs until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/config"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/database"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/feasibility"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/proforma"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/reliability"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/rules"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/scheduler"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/server"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/snapshots"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting feasibility engine")

	// Two databases: rules.db is an ephemeral cache, runs.db holds completed
	// analyses and gets the durable profile.
	rulesDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "rules.db"),
		Profile: database.ProfileCache,
		Name:    "rules",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open rules database")
	}
	defer rulesDB.Close()

	runsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "runs.db"),
		Profile: database.ProfileStandard,
		Name:    "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open runs database")
	}
	defer runsDB.Close()

	for _, db := range []*database.DB{rulesDB, runsDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Migration failed")
		}
	}

	assumptions, err := config.LoadMarketAssumptions(cfg.AssumptionsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load market assumptions")
	}

	if cfg.ScraperBaseURL == "" {
		log.Warn().Msg("SCRAPER_BASE_URL not set; rule lookups will only serve the cache")
	}
	ruleRepo := rules.NewRepository(rulesDB.Conn())
	ruleStore := rules.NewStore(ruleRepo, rules.NewHTTPFetcher(cfg.ScraperBaseURL), rules.StoreConfig{
		TTL:          cfg.RuleTTL,
		FetchTimeout: cfg.FetchTimeout,
		AllowStale:   cfg.AllowStaleRules,
	}, log)

	snapRepo := snapshots.NewRepository(runsDB.Conn())
	model := proforma.NewModel(assumptions)
	analysisService := feasibility.NewService(ruleStore, model, cfg.Workers, log)

	// Maintenance jobs: daily cleanup and integrity checks, hourly WAL
	// checkpoints, nightly backups when configured.
	sched := scheduler.New(log)
	allDBs := []*database.DB{rulesDB, runsDB}
	mustSchedule(log, sched, "30 3 * * *", scheduler.NewCleanupJob(ruleRepo, snapRepo, log))
	mustSchedule(log, sched, "0 4 * * *", scheduler.NewIntegrityCheckJob(allDBs, log))
	mustSchedule(log, sched, "@hourly", scheduler.NewWALCheckpointJob(allDBs, log))

	var backupService *reliability.BackupService
	if cfg.Backup != nil && cfg.Backup.Enabled {
		store, err := reliability.NewObjectStore(context.Background(), cfg.Backup)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup object store")
		}
		backupService = reliability.NewBackupService(store, allDBs, cfg.DataDir, cfg.Backup.Keep, log)
		mustSchedule(log, sched, "0 2 * * *", reliability.NewBackupJob(backupService, log))
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:         log,
		Cfg:         cfg,
		RulesDB:     rulesDB,
		RunsDB:      runsDB,
		Feasibility: analysisService,
		RuleStore:   ruleStore,
		Snapshots:   snapRepo,
		Scheduler:   sched,
		Backups:     backupService,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Stopped")
}

func mustSchedule(log zerolog.Logger, sched *scheduler.Scheduler, spec string, job scheduler.Job) {
	if err := sched.AddJob(spec, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to schedule job")
	}
}
