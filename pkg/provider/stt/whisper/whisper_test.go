package whisper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voicebrief/pkg/provider/stt/whisper"
)

// ---- helpers ----------------------------------------------------------------

// inferenceRequest captures the multipart fields of one /inference call.
type inferenceRequest struct {
	filename string
	audio    []byte
	language string
	model    string
}

// newMockServer creates a test server that responds to POST /inference with a
// JSON body containing the provided responseText. Each matched request is
// recorded into *reqs when non-nil.
func newMockServer(t *testing.T, responseText string, reqs *[]inferenceRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if reqs != nil {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			var req inferenceRequest
			if f, hdr, err := r.FormFile("file"); err == nil {
				req.filename = hdr.Filename
				buf := make([]byte, hdr.Size)
				_, _ = f.Read(buf)
				req.audio = buf
				_ = f.Close()
			}
			req.language = r.FormValue("language")
			req.model = r.FormValue("model")
			*reqs = append(*reqs, req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": responseText})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---- provider construction --------------------------------------------------

func TestNew_EmptyServerURL_ReturnsError(t *testing.T) {
	if _, err := whisper.New(""); err == nil {
		t.Fatal("expected error for empty serverURL, got nil")
	}
}

func TestNew_TrailingSlashTrimmed(t *testing.T) {
	var reqs []inferenceRequest
	srv := newMockServer(t, "ok", &reqs)

	p, err := whisper.New(srv.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Transcribe(context.Background(), []byte("x")); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("inference calls: want 1, got %d", len(reqs))
	}
}

// ---- transcription ----------------------------------------------------------

func TestTranscribe_ReturnsText(t *testing.T) {
	const wantText = "hello world"
	var reqs []inferenceRequest
	srv := newMockServer(t, wantText, &reqs)

	p, _ := whisper.New(srv.URL)
	got, err := p.Transcribe(context.Background(), []byte("fake ogg bytes"))
	if err != nil {
		t.Fatalf("Transcribe: unexpected error: %v", err)
	}
	if got != wantText {
		t.Errorf("Transcribe: want %q, got %q", wantText, got)
	}
	if len(reqs) != 1 {
		t.Fatalf("inference calls: want 1, got %d", len(reqs))
	}
	if string(reqs[0].audio) != "fake ogg bytes" {
		t.Errorf("uploaded audio: got %q", reqs[0].audio)
	}
	if reqs[0].filename != "input.mp3" {
		t.Errorf("uploaded filename: want input.mp3, got %q", reqs[0].filename)
	}
}

func TestTranscribe_ForwardsHintFields(t *testing.T) {
	var reqs []inferenceRequest
	srv := newMockServer(t, "ok", &reqs)

	p, _ := whisper.New(srv.URL,
		whisper.WithLanguage("de"),
		whisper.WithModel("small"),
	)
	if _, err := p.Transcribe(context.Background(), []byte("x")); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if reqs[0].language != "de" {
		t.Errorf("language field: want de, got %q", reqs[0].language)
	}
	if reqs[0].model != "small" {
		t.Errorf("model field: want small, got %q", reqs[0].model)
	}
}

func TestTranscribe_OmitsEmptyHintFields(t *testing.T) {
	var reqs []inferenceRequest
	srv := newMockServer(t, "ok", &reqs)

	p, _ := whisper.New(srv.URL)
	if _, err := p.Transcribe(context.Background(), []byte("x")); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if reqs[0].language != "" || reqs[0].model != "" {
		t.Errorf("hint fields should be absent, got language=%q model=%q",
			reqs[0].language, reqs[0].model)
	}
}

func TestTranscribe_EmptyAudio_ReturnsError(t *testing.T) {
	srv := newMockServer(t, "never", nil)

	p, _ := whisper.New(srv.URL)
	if _, err := p.Transcribe(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty audio, got nil")
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p, _ := whisper.New(srv.URL)
	_, err := p.Transcribe(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should name the HTTP status: %v", err)
	}
}

func TestTranscribe_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	p, _ := whisper.New(srv.URL)
	if _, err := p.Transcribe(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestTranscribe_RepairsInvalidUTF8(t *testing.T) {
	// Raw JSON with an invalid byte sequence inside the text field.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"text\":\"caf\xc3 ok\"}"))
	}))
	t.Cleanup(srv.Close)

	p, _ := whisper.New(srv.URL)
	got, err := p.Transcribe(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Transcribe: unexpected error: %v", err)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("invalid bytes should become U+FFFD, got %q", got)
	}
	if !strings.HasSuffix(got, " ok") {
		t.Errorf("valid portion should survive, got %q", got)
	}
}

func TestTranscribe_CancelledContext(t *testing.T) {
	srv := newMockServer(t, "never", nil)

	p, _ := whisper.New(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Transcribe(ctx, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}
