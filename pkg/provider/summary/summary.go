// Package summary defines the text summarization provider abstraction used
// by the pipeline, along with the fixed prompts every implementation sends.
package summary

import "context"

const (
	// SystemPrompt establishes concise-summarization behavior. It is sent as
	// the system message of every summarization request.
	SystemPrompt = "You are a helpful assistant that summarizes text concisely."

	// UserPrefix is prepended to the transcript to form the user message.
	UserPrefix = "Please summarize the following text:\n\n"
)

// Provider condenses a block of text into a short summary.
//
// Implementations must be safe for concurrent use: one Provider instance is
// shared by every pipeline run.
type Provider interface {
	// Summarize issues one synchronous chat-completion request built from
	// [SystemPrompt] and [UserPrefix] + text, and returns the first choice's
	// content. A successful upstream call that carries no content yields an
	// empty string, not an error.
	Summarize(ctx context.Context, text string) (string, error)
}
