// Package telegram provides the Telegram chat-platform layer for voicebrief.
// It owns the Bot API session lifecycle, runs the long-polling dispatch
// loop, classifies inbound messages, and implements the pipeline's retrieval
// and reply-delivery collaborators.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"voicebrief/internal/pipeline"
)

// defaultUpdateTimeout is the long-poll timeout in seconds passed to
// getUpdates.
const defaultUpdateTimeout = 30

// Config holds Telegram bot configuration.
type Config struct {
	// Token is the bot token issued by @BotFather.
	Token string `yaml:"token"`

	// APIEndpoint overrides the Bot API endpoint format string
	// (default "https://api.telegram.org/bot%s/%s"). Used for local Bot API
	// servers and tests.
	APIEndpoint string `yaml:"api_endpoint"`

	// UpdateTimeout is the getUpdates long-poll timeout in seconds.
	// Defaults to 30.
	UpdateTimeout int `yaml:"update_timeout"`
}

// Runner executes one pipeline run for one inbound event. Implemented by
// [pipeline.Pipeline].
type Runner interface {
	Run(ctx context.Context, ev pipeline.InboundEvent) error
}

// Bot owns the Telegram Bot API connection and dispatches one pipeline run
// per inbound message.
type Bot struct {
	api           *tgbotapi.BotAPI
	updateTimeout int
}

// New creates a Bot and authenticates against the Bot API (getMe).
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: token must not be empty")
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	timeout := cfg.UpdateTimeout
	if timeout <= 0 {
		timeout = defaultUpdateTimeout
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	return &Bot{api: api, updateTimeout: timeout}, nil
}

// API returns the underlying Bot API client. Used to construct the
// [FileRetriever] and [Replier] collaborators and for readiness checks.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Username returns the bot account's username as reported by getMe.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run starts long polling and dispatches one independent pipeline run per
// inbound message. Runs for different messages execute concurrently; a
// failure or stall in one never blocks another. Run blocks until ctx is
// cancelled, then stops polling, waits for in-flight runs to drain, and
// returns ctx's error.
func (b *Bot) Run(ctx context.Context, runner Runner) error {
	if runner == nil {
		return errors.New("telegram: runner must not be nil")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout
	updates := b.api.GetUpdatesChan(u)

	g := new(errgroup.Group)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			_ = g.Wait() // handlers report failures via logs, never errors
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				_ = g.Wait()
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			g.Go(func() error {
				b.handle(ctx, runner, msg)
				return nil
			})
		}
	}
}

// handle classifies one message and executes a pipeline run. Run failures
// end here: they are logged with the failed stage and nothing is sent back
// to the chat.
func (b *Bot) handle(ctx context.Context, runner Runner, msg *tgbotapi.Message) {
	ev := pipeline.InboundEvent{
		Chat:  pipeline.ChatID(msg.Chat.ID),
		Media: Classify(msg),
	}

	slog.Debug("dispatching pipeline run",
		"chat_id", msg.Chat.ID,
		"media", ev.Media.Kind.String(),
	)

	if err := runner.Run(ctx, ev); err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			slog.Error("pipeline run failed",
				"chat_id", msg.Chat.ID,
				"stage", string(stageErr.Stage),
				"err", stageErr.Err,
			)
			return
		}
		slog.Error("pipeline run failed", "chat_id", msg.Chat.ID, "err", err)
	}
}
