package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voicebrief/internal/pipeline"
)

// Compile-time assertion that Replier implements pipeline.Replier.
var _ pipeline.Replier = (*Replier)(nil)

// Replier implements pipeline.Replier by sending a plain-text message to the
// originating chat. There is no delivery-receipt tracking.
type Replier struct {
	api *tgbotapi.BotAPI
}

// NewReplier creates a Replier on top of the given Bot API client.
func NewReplier(api *tgbotapi.BotAPI) *Replier {
	return &Replier{api: api}
}

// Reply implements pipeline.Replier. The Bot API client does not thread
// contexts through Send, so ctx is unused.
func (r *Replier) Reply(_ context.Context, chat pipeline.ChatID, text string) error {
	if _, err := r.api.Send(tgbotapi.NewMessage(int64(chat), text)); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}
