package telegram_test

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voicebrief/internal/pipeline"
	"voicebrief/internal/telegram"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		msg      *tgbotapi.Message
		wantKind pipeline.MediaKind
		wantFile string
	}{
		{
			name:     "voice note",
			msg:      &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "voice-1"}},
			wantKind: pipeline.MediaVoiceNote,
			wantFile: "voice-1",
		},
		{
			name:     "audio file",
			msg:      &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "audio-1"}},
			wantKind: pipeline.MediaAudioFile,
			wantFile: "audio-1",
		},
		{
			name:     "plain text",
			msg:      &tgbotapi.Message{Text: "summarize this please"},
			wantKind: pipeline.MediaUnsupported,
		},
		{
			name:     "sticker",
			msg:      &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "sticker-1"}},
			wantKind: pipeline.MediaUnsupported,
		},
		{
			name:     "photo",
			msg:      &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "photo-1"}}},
			wantKind: pipeline.MediaUnsupported,
		},
		{
			name:     "document",
			msg:      &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc-1"}},
			wantKind: pipeline.MediaUnsupported,
		},
		{
			name: "voice wins over audio",
			msg: &tgbotapi.Message{
				Voice: &tgbotapi.Voice{FileID: "voice-1"},
				Audio: &tgbotapi.Audio{FileID: "audio-1"},
			},
			wantKind: pipeline.MediaVoiceNote,
			wantFile: "voice-1",
		},
		{
			name:     "empty message",
			msg:      &tgbotapi.Message{},
			wantKind: pipeline.MediaUnsupported,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := telegram.Classify(tc.msg)
			if got.Kind != tc.wantKind {
				t.Errorf("kind: want %v, got %v", tc.wantKind, got.Kind)
			}
			if got.FileID != tc.wantFile {
				t.Errorf("file ID: want %q, got %q", tc.wantFile, got.FileID)
			}
		})
	}
}
