package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Spok95/metalcut-bot/internal/bot"
	"github.com/Spok95/metalcut-bot/internal/config"
	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/clients"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/Spok95/metalcut-bot/internal/infra/db"
	httpx "github.com/Spok95/metalcut-bot/internal/infra/http"
	"github.com/Spok95/metalcut-bot/internal/infra/logger"
	"github.com/Spok95/metalcut-bot/internal/infra/metrics"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	rec := metrics.NewLedger()
	led := ledger.New(ledger.NewRepo(pool), ledger.Config{
		Location: cfg.Location(),
		Recorder: rec,
	})
	if err := led.Load(ctx); err != nil {
		log.Error("ledger load failed", "err", err)
		return
	}
	log.Info("ledger loaded", "lots", len(led.Lots()), "notes", len(led.Notes()))

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = rec.Handler()
	}
	srv := httpx.New(cfg.HTTP.Addr, httpx.NewRouter(httpx.NewAPI(led, log), metricsHandler, log))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Token == "" {
		log.Warn("telegram token is empty, bot disabled")
	} else {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram auth failed", "err", err)
			return
		}
		log.Info("telegram bot authorized", "username", api.Self.UserName)

		b := bot.New(api, log, dialog.NewRepo(pool), clients.NewRepo(pool), led, cfg.IsOperator)
		go func() {
			if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "err", err)
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
