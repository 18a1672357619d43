// Package mock provides recording test doubles for the pipeline's four
// collaborators. Every double is safe for concurrent use so tests can
// exercise parallel runs.
package mock

import (
	"context"
	"sync"

	"voicebrief/internal/pipeline"
)

// Retriever is a recording test double for pipeline.Retriever.
type Retriever struct {
	mu    sync.Mutex
	calls []string

	// Data is returned by Retrieve when RetrieveFunc is nil and Err is nil.
	Data []byte

	// Err is returned by Retrieve when non-nil, allowing error injection.
	Err error

	// RetrieveFunc, when non-nil, replaces the default behavior entirely.
	RetrieveFunc func(ctx context.Context, fileID string) ([]byte, error)
}

// Retrieve records the call and returns the configured result.
func (r *Retriever) Retrieve(ctx context.Context, fileID string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, fileID)
	r.mu.Unlock()

	if r.RetrieveFunc != nil {
		return r.RetrieveFunc(ctx, fileID)
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Data, nil
}

// Calls returns the file IDs of all recorded Retrieve calls.
func (r *Retriever) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Transcriber is a recording test double for stt.Provider.
type Transcriber struct {
	mu    sync.Mutex
	calls [][]byte

	// Text is returned by Transcribe when TranscribeFunc is nil and Err is nil.
	Text string

	// Err is returned by Transcribe when non-nil.
	Err error

	// TranscribeFunc, when non-nil, replaces the default behavior entirely.
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)
}

// Transcribe records the call and returns the configured result.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, append([]byte(nil), audio...))
	t.mu.Unlock()

	if t.TranscribeFunc != nil {
		return t.TranscribeFunc(ctx, audio)
	}
	if t.Err != nil {
		return "", t.Err
	}
	return t.Text, nil
}

// Calls returns copies of the audio payloads of all recorded calls.
func (t *Transcriber) Calls() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.calls))
	copy(out, t.calls)
	return out
}

// Summarizer is a recording test double for summary.Provider.
type Summarizer struct {
	mu    sync.Mutex
	calls []string

	// Text is returned by Summarize when SummarizeFunc is nil and Err is nil.
	Text string

	// Err is returned by Summarize when non-nil.
	Err error

	// SummarizeFunc, when non-nil, replaces the default behavior entirely.
	SummarizeFunc func(ctx context.Context, text string) (string, error)
}

// Summarize records the call and returns the configured result.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()

	if s.SummarizeFunc != nil {
		return s.SummarizeFunc(ctx, text)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Calls returns the input texts of all recorded Summarize calls.
func (s *Summarizer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Reply is one recorded outbound message.
type Reply struct {
	Chat pipeline.ChatID
	Text string
}

// Replier is a recording test double for pipeline.Replier.
type Replier struct {
	mu   sync.Mutex
	sent []Reply

	// Err is returned by Reply when non-nil.
	Err error
}

// Reply records the outbound message and returns the configured error.
func (r *Replier) Reply(_ context.Context, chat pipeline.ChatID, text string) error {
	r.mu.Lock()
	r.sent = append(r.sent, Reply{Chat: chat, Text: text})
	r.mu.Unlock()
	return r.Err
}

// Sent returns all recorded replies in delivery order.
func (r *Replier) Sent() []Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Reply(nil), r.sent...)
}

// LastSent returns the most recently recorded reply, or a zero Reply.
func (r *Replier) LastSent() Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Reply{}
	}
	return r.sent[len(r.sent)-1]
}
