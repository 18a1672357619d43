package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voicebrief/internal/pipeline"
)

// Compile-time assertion that FileRetriever implements pipeline.Retriever.
var _ pipeline.Retriever = (*FileRetriever)(nil)

// FileRetriever implements pipeline.Retriever against the Telegram Bot API:
// one getFile metadata lookup to resolve the file reference to a storage
// path, followed by one full download into memory. Voice and audio payloads
// are bounded by Telegram's own message-size limits, so no streaming or
// partial retrieval is needed.
type FileRetriever struct {
	api          *tgbotapi.BotAPI
	fileEndpoint string
	httpClient   *http.Client
}

// RetrieverOption is a functional option for FileRetriever.
type RetrieverOption func(*FileRetriever)

// WithFileEndpoint overrides the file download endpoint format string
// (default "https://api.telegram.org/file/bot%s/%s", filled with the bot
// token and the resolved file path). Used for local Bot API servers and
// tests.
func WithFileEndpoint(endpoint string) RetrieverOption {
	return func(r *FileRetriever) {
		r.fileEndpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client used for downloads. The default
// client carries no timeout; a hung download suspends only its own run.
func WithHTTPClient(c *http.Client) RetrieverOption {
	return func(r *FileRetriever) {
		r.httpClient = c
	}
}

// NewFileRetriever creates a FileRetriever on top of the given Bot API
// client.
func NewFileRetriever(api *tgbotapi.BotAPI, opts ...RetrieverOption) *FileRetriever {
	r := &FileRetriever{
		api:          api,
		fileEndpoint: tgbotapi.FileEndpoint,
		httpClient:   &http.Client{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Retrieve implements pipeline.Retriever.
func (r *FileRetriever) Retrieve(ctx context.Context, fileID string) ([]byte, error) {
	file, err := r.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("telegram: get file %q: %w", fileID, err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram: get file %q: no file path in response", fileID)
	}

	url := fmt.Sprintf(r.fileEndpoint, r.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download %q: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download %q: HTTP %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read %q: %w", fileID, err)
	}
	return data, nil
}
