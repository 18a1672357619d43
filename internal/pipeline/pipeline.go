// Package pipeline implements the message-handling core of voicebrief: it
// takes one classified inbound chat event through retrieval, transcription,
// summarization, and reply delivery.
//
// A run is an explicit sequential state machine:
//
//	Classifying → Retrieving → Transcribing → Summarizing → Delivering → Done
//
// with two terminal branches: Unsupported (reachable only from Classifying;
// answered with a fixed instructional reply) and Failed (any later stage;
// surfaced to the caller as a [*StageError]). Transitions never go backward,
// no stage is retried, and each stage's output is the next stage's input,
// unmodified. All per-run data lives on the run's stack, so concurrent runs
// share nothing but the stateless collaborator handles.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicebrief/internal/observe"
	"voicebrief/pkg/provider/stt"
	"voicebrief/pkg/provider/summary"
)

// UnsupportedReply is sent verbatim when a message carries neither a voice
// note nor an audio attachment. It is the only user-visible text the
// pipeline produces besides the summary itself.
const UnsupportedReply = "Please send a voice message or an audio file."

// ChatID identifies the conversation an event originated from. It is opaque
// to the pipeline and only handed back to the [Replier].
type ChatID int64

// MediaKind is the closed set of media classifications. Anything the
// classifier does not recognise maps to [MediaUnsupported].
type MediaKind int

const (
	MediaUnsupported MediaKind = iota
	MediaVoiceNote
	MediaAudioFile
)

// String returns the kind's name for logs and error messages.
func (k MediaKind) String() string {
	switch k {
	case MediaVoiceNote:
		return "voice_note"
	case MediaAudioFile:
		return "audio_file"
	default:
		return "unsupported"
	}
}

// MediaSelection is the classifier's verdict on one inbound message: the
// media kind plus, for supported kinds, the platform file reference.
type MediaSelection struct {
	Kind   MediaKind
	FileID string
}

// InboundEvent is one chat message as seen by the pipeline. It is consumed
// by exactly one run and not retained afterwards.
type InboundEvent struct {
	Chat  ChatID
	Media MediaSelection
}

// Stage names the step of a run in which a failure occurred.
type Stage string

const (
	StageClassify   Stage = "classify"
	StageRetrieve   Stage = "retrieve"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StageDeliver    Stage = "deliver"
)

// StageError wraps a collaborator failure with the stage it occurred in.
// Callers match it with [errors.As] to decide user-visible behavior; the
// pipeline itself never reports failures back to the chat.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Retriever resolves a platform file reference and downloads the complete
// media blob into memory.
type Retriever interface {
	Retrieve(ctx context.Context, fileID string) ([]byte, error)
}

// Replier delivers plain text to the chat identified by chat.
type Replier interface {
	Reply(ctx context.Context, chat ChatID, text string) error
}

// Pipeline orchestrates one run per inbound event. The collaborator handles
// are stateless and shared; Pipeline itself holds no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	retriever   Retriever
	transcriber stt.Provider
	summarizer  summary.Provider
	replier     Replier
	metrics     *observe.Metrics
}

// Option configures a [Pipeline] during construction.
type Option func(*Pipeline)

// WithMetrics overrides the metrics instance used to record run and stage
// latencies. The default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline from its four collaborators. All of them are
// required.
func New(retriever Retriever, transcriber stt.Provider, summarizer summary.Provider, replier Replier, opts ...Option) (*Pipeline, error) {
	if retriever == nil {
		return nil, errors.New("pipeline: retriever must not be nil")
	}
	if transcriber == nil {
		return nil, errors.New("pipeline: transcriber must not be nil")
	}
	if summarizer == nil {
		return nil, errors.New("pipeline: summarizer must not be nil")
	}
	if replier == nil {
		return nil, errors.New("pipeline: replier must not be nil")
	}

	p := &Pipeline{
		retriever:   retriever,
		transcriber: transcriber,
		summarizer:  summarizer,
		replier:     replier,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p, nil
}

// Run executes one complete pipeline run for ev. It returns nil when the run
// ends in Done or in the Unsupported terminal branch, and a [*StageError]
// when any stage fails. A failure aborts the run immediately; no later stage
// is invoked and no reply is sent.
func (p *Pipeline) Run(ctx context.Context, ev InboundEvent) error {
	start := time.Now()
	p.metrics.ActiveRuns.Add(ctx, 1)
	defer p.metrics.ActiveRuns.Add(ctx, -1)

	outcome, err := p.run(ctx, ev)

	var failedStage Stage
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		failedStage = stageErr.Stage
	}
	p.metrics.RecordRun(ctx, outcome, string(failedStage), time.Since(start).Seconds())

	return err
}

// run is the state machine. Each arm performs one stage's side effect, stores
// its output for the next stage, and advances; the first failure returns and
// thereby ends the run. The abort-on-first-failure policy is structural — no
// arm is reachable unless its predecessor succeeded.
func (p *Pipeline) run(ctx context.Context, ev InboundEvent) (outcome string, err error) {
	var (
		audio       []byte
		transcript  string
		summaryText string
	)

	for st := StageClassify; ; {
		switch st {
		case StageClassify:
			if ev.Media.Kind == MediaUnsupported {
				// Terminal branch, not a failure: instruct the user and stop.
				if err := p.reply(ctx, ev.Chat, UnsupportedReply); err != nil {
					return observe.OutcomeFailed, err
				}
				return observe.OutcomeUnsupported, nil
			}
			st = StageRetrieve

		case StageRetrieve:
			audio, err = p.retrieve(ctx, ev.Media.FileID)
			if err != nil {
				return observe.OutcomeFailed, err
			}
			st = StageTranscribe

		case StageTranscribe:
			transcript, err = p.transcribe(ctx, audio)
			if err != nil {
				return observe.OutcomeFailed, err
			}
			audio = nil // the audio payload is dead once transcribed
			st = StageSummarize

		case StageSummarize:
			// summaryText may legitimately be empty; see summary.Provider.
			summaryText, err = p.summarize(ctx, transcript)
			if err != nil {
				return observe.OutcomeFailed, err
			}
			st = StageDeliver

		case StageDeliver:
			if err := p.reply(ctx, ev.Chat, summaryText); err != nil {
				return observe.OutcomeFailed, err
			}
			return observe.OutcomeOK, nil
		}
	}
}

func (p *Pipeline) retrieve(ctx context.Context, fileID string) ([]byte, error) {
	start := time.Now()
	audio, err := p.retriever.Retrieve(ctx, fileID)
	p.metrics.RecordStage(ctx, string(StageRetrieve), time.Since(start).Seconds())
	if err != nil {
		return nil, &StageError{Stage: StageRetrieve, Err: err}
	}
	return audio, nil
}

func (p *Pipeline) transcribe(ctx context.Context, audio []byte) (string, error) {
	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, audio)
	p.metrics.RecordStage(ctx, string(StageTranscribe), time.Since(start).Seconds())
	if err != nil {
		return "", &StageError{Stage: StageTranscribe, Err: err}
	}
	return text, nil
}

func (p *Pipeline) summarize(ctx context.Context, text string) (string, error) {
	start := time.Now()
	s, err := p.summarizer.Summarize(ctx, text)
	p.metrics.RecordStage(ctx, string(StageSummarize), time.Since(start).Seconds())
	if err != nil {
		return "", &StageError{Stage: StageSummarize, Err: err}
	}
	return s, nil
}

func (p *Pipeline) reply(ctx context.Context, chat ChatID, text string) error {
	start := time.Now()
	err := p.replier.Reply(ctx, chat, text)
	p.metrics.RecordStage(ctx, string(StageDeliver), time.Since(start).Seconds())
	if err != nil {
		return &StageError{Stage: StageDeliver, Err: err}
	}
	return nil
}
