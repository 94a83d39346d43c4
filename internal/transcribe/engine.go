package transcribe

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
)

// ErrUnavailable marks failures where the engine itself cannot be used.
var ErrUnavailable = errors.New("transcription engine unavailable")

// ErrSegmentsConsumed is yielded when a streamed segment sequence is ranged twice.
var ErrSegmentsConsumed = errors.New("segment stream already consumed")

// Segment is one timed span of recognized text. Start and End are nil when
// the engine did not report them.
type Segment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

// Info summarizes a transcription. Nil fields were not reported.
type Info struct {
	Language            *string  `json:"language"`
	LanguageProbability *float64 `json:"language_probability"`
	Duration            *float64 `json:"duration"`
}

// Options tune a single Transcribe call.
type Options struct {
	// Language is a hint; empty requests auto-detection.
	Language string
	// BeamSize is floored at 1.
	BeamSize int
	// VADFilter enables the engine's voice activity filter.
	VADFilter bool
	// ConditionOnPreviousText feeds prior output back as a prompt.
	ConditionOnPreviousText bool
}

// Normalized returns a copy with the beam size floored at 1 and the language
// hint trimmed.
func (o Options) Normalized() Options {
	if o.BeamSize < 1 {
		o.BeamSize = 1
	}
	o.Language = strings.TrimSpace(o.Language)
	return o
}

// Transcription is the result of one Transcribe call.
type Transcription struct {
	Info Info
	// Segments yields segments in engine order. Streamed sequences can only be
	// ranged once.
	Segments iter.Seq2[Segment, error]

	closeOnce sync.Once
	closer    func() error
	closeErr  error
}

// NewTranscription wraps a segment sequence and an optional release hook.
func NewTranscription(info Info, segments iter.Seq2[Segment, error], closer func() error) *Transcription {
	return &Transcription{Info: info, Segments: segments, closer: closer}
}

// FromSegments builds a Transcription over an in-memory slice.
func FromSegments(info Info, segments []Segment) *Transcription {
	return NewTranscription(info, func(yield func(Segment, error) bool) {
		for _, seg := range segments {
			if !yield(seg, nil) {
				return
			}
		}
	}, nil)
}

// Close releases engine resources held by the transcription. It is safe to
// call more than once.
func (t *Transcription) Close() error {
	if t == nil {
		return nil
	}
	t.closeOnce.Do(func() {
		if t.closer != nil {
			t.closeErr = t.closer()
		}
	})
	return t.closeErr
}

// Engine is a configured speech-recognition backend.
type Engine interface {
	Transcribe(ctx context.Context, path string, opts Options) (*Transcription, error)
	Close() error
}

// Factory constructs an Engine from configuration.
type Factory func(cfg Config) (Engine, error)

// NewEngine is the default Factory; it dispatches on cfg.Backend.
func NewEngine(cfg Config) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFasterWhisper:
		return NewFasterWhisper(cfg)
	case BackendOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnavailable, cfg.Backend)
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
