// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-worldtime-bot/internal/application"
	"telegram-worldtime-bot/internal/config"
	"telegram-worldtime-bot/internal/domain/ports/adapter"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	pg "telegram-worldtime-bot/internal/infra/db/postgres"
	"telegram-worldtime-bot/internal/infra/logging"
	"telegram-worldtime-bot/internal/infra/metrics"
	red "telegram-worldtime-bot/internal/infra/redis"
	"telegram-worldtime-bot/internal/infra/sched"
	tele "telegram-worldtime-bot/internal/infra/telegram"
	"telegram-worldtime-bot/internal/infra/web"
	"telegram-worldtime-bot/internal/tzdata"
	"telegram-worldtime-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop bot, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Zone catalog ----
	catalog, err := tzdata.NewCatalog()
	if err != nil {
		logger.Fatal().Err(err).Msg("zone catalog")
	}
	logger.Info().Int("zones", catalog.Size()).Msg("zone catalog loaded")

	// ---- Postgres ----
	poolSize := int32(cfg.Database.PoolSize)
	if poolSize <= 0 {
		poolSize = 10
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, poolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repository ----
	var zones repository.MemberZoneRepository = pg.NewPostgresMemberZoneRepo(pool, cfg.Registry.ActiveWindow, cfg.Registry.TopZones)
	zones = pg.NewMemberZoneRepoCacheDecorator(zones, redisClient, cfg.Redis.TTL)

	// ---- Use cases ----
	zoneUC := usecase.NewZoneUseCase(catalog, zones, logger)
	statsUC := usecase.NewStatsUseCase(zones, logger)

	// ---- Facade & bot ----
	facade := application.NewBotFacade(zoneUC, statsUC, nil)

	var bot adapter.TelegramBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter()
	} else {
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		// The bot resolves member display names for the facade's replies.
		facade.Names = botAdapter

		if strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented, falling back to polling")
		}
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
		bot = botAdapter
	}

	// ---- Background workers ----
	startWorkers(ctx, cfg, zones, statsUC, bot, locker, logger)

	// ---- Admin HTTP (health + metrics) ----
	adminSrv := web.NewServer(logger, map[string]web.Pinger{
		"postgres": pool,
		"redis":    redisClient,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

func startWorkers(
	ctx context.Context,
	cfg *config.Config,
	zones repository.MemberZoneRepository,
	statsUC usecase.StatsUseCase,
	bot adapter.TelegramBotAdapter,
	locker red.Locker,
	logger *zerolog.Logger,
) {
	stats := sched.NewStatsWorker(cfg.Scheduler.StatsInterval, statsUC, logger)
	go func() { _ = stats.Run(ctx) }()

	warm := sched.NewWarmWorker(cfg.Scheduler.WarmInterval, zones, bot, locker, logger)
	go func() { _ = warm.Run(ctx) }()
}
