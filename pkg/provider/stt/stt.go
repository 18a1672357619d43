// Package stt defines the speech-to-text provider abstraction used by the
// summarization pipeline.
//
// Unlike streaming STT engines, providers here are batch-oriented: they
// receive one complete encoded audio payload (an Opus voice note, an MP3
// attachment, …) and return its full transcript in a single call. Chat
// platforms cap message sizes, so payloads are small enough to hold in
// memory.
package stt

import "context"

// Provider converts a complete encoded audio payload into plain text.
//
// Implementations must be safe for concurrent use: one Provider instance is
// shared by every pipeline run. The audio slice is owned by the caller and
// must not be retained after Transcribe returns.
type Provider interface {
	// Transcribe submits audio to the upstream engine and returns the
	// transcript. The returned text is always valid UTF-8; implementations
	// repair mis-encoded bytes with U+FFFD rather than failing the call.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
