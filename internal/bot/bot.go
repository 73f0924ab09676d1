package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/dispatch"
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
	"github.com/woodflow/woodflow-bot/internal/domain/pallets"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
)

// telegramAPI: то, что бот использует из *tgbotapi.BotAPI.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Settings: константы завода из конфига.
type Settings struct {
	AdminChatID    int64
	ReceptionID    int64
	WorkOrderID    int64
	DefaultGroupID int64
	Rater          string
	Location       *time.Location
}

type Deps struct {
	States   dialog.Store
	Pallets  *pallets.Repo
	Drying   *drying.Repo
	Blocks   *blocks.Repo
	Dispatch *dispatch.Service
	Calc     pallets.Calculator
}

type Bot struct {
	api      telegramAPI
	log      *slog.Logger
	states   dialog.Store
	pallets  *pallets.Repo
	drying   *drying.Repo
	blocks   *blocks.Repo
	dispatch *dispatch.Service
	calc     pallets.Calculator
	cfg      Settings
	now      func() time.Time
}

func New(api telegramAPI, log *slog.Logger, deps Deps, cfg Settings) *Bot {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Rater == "" {
		cfg.Rater = "Supervisor Movil"
	}
	return &Bot{
		api: api, log: log, states: deps.States,
		pallets: deps.Pallets, drying: deps.Drying, blocks: deps.Blocks,
		dispatch: deps.Dispatch, calc: deps.Calc, cfg: cfg,
		now: time.Now,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate обрабатывает один апдейт; апдейты идут строго по одному.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		metrics.CountUpdate("message")
		b.onMessage(ctx, upd)
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		metrics.CountUpdate("callback")
		b.onCallback(ctx, upd)
	default:
		metrics.CountUpdate("other")
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}
