package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voicebrief/internal/pipeline"
)

// Classify maps one inbound message onto the pipeline's closed media kinds.
//
// A message is a voice note when it carries Telegram's native Voice media, an
// audio file when it carries generic Audio media, and unsupported otherwise —
// text, photos, documents, stickers, and any payload kind Telegram adds
// later. Classification never fails; unsupported is a normal verdict.
func Classify(msg *tgbotapi.Message) pipeline.MediaSelection {
	switch {
	case msg.Voice != nil:
		return pipeline.MediaSelection{Kind: pipeline.MediaVoiceNote, FileID: msg.Voice.FileID}
	case msg.Audio != nil:
		return pipeline.MediaSelection{Kind: pipeline.MediaAudioFile, FileID: msg.Audio.FileID}
	default:
		return pipeline.MediaSelection{Kind: pipeline.MediaUnsupported}
	}
}
