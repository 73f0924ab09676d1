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
	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"

	"github.com/woodflow/woodflow-bot/internal/bot"
	"github.com/woodflow/woodflow-bot/internal/config"
	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/dispatch"
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
	"github.com/woodflow/woodflow-bot/internal/domain/pallets"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
	"github.com/woodflow/woodflow-bot/internal/infra/db"
	httpx "github.com/woodflow/woodflow-bot/internal/infra/http"
	"github.com/woodflow/woodflow-bot/internal/infra/logger"
)

func main() {
	// .env рядом с бинарником не обязателен
	_ = gotenv.Load()

	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var states dialog.Store = dialog.NewMemoryStore()
	var ready httpx.ReadyFunc
	if cfg.Postgres.DSN != "" {
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("db connect failed", "err", err)
			return
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("migrations failed", "err", err)
			return
		}
		log.Info("db connected, migrations applied")
		states = dialog.NewRepo(pool)
		ready = func(ctx context.Context) error { return pool.Ping(ctx) }
	} else {
		log.Info("postgres dsn empty, dialog state kept in memory")
	}

	calc, err := pallets.NewCalculator(decimal.NewFromFloat(cfg.WoodFlow.AcceptanceFactor))
	if err != nil {
		log.Error("invalid acceptance factor", "err", err)
		return
	}

	client := api.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	blockRepo := blocks.NewRepo(client)
	deps := bot.Deps{
		States:   states,
		Pallets:  pallets.NewRepo(client),
		Drying:   drying.NewRepo(client, loc),
		Blocks:   blockRepo,
		Dispatch: dispatch.NewService(dispatch.NewRepo(client), blockRepo, log),
		Calc:     calc,
	}

	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", tg.Self.UserName)

	b := bot.New(tg, log, deps, bot.Settings{
		AdminChatID:    cfg.Telegram.AdminChatID,
		ReceptionID:    cfg.WoodFlow.ReceptionID,
		WorkOrderID:    cfg.WoodFlow.WorkOrderID,
		DefaultGroupID: cfg.WoodFlow.DefaultGroupID,
		Rater:          cfg.WoodFlow.Rater,
		Location:       loc,
	})

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, ready)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	go func() {
		if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", "err", err)
			stop()
		}
	}()
	log.Info("bot started", "backend", cfg.Backend.BaseURL)

	<-ctx.Done()
	tg.StopReceivingUpdates()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
