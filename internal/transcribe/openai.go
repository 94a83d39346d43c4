package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"vttgen/internal/language"
	"vttgen/internal/logging"
)

// OpenAI transcribes through an OpenAI-compatible audio transcription API.
// The whole file is uploaded and the verbose JSON response is replayed as a
// segment sequence.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI builds a client for cfg.OpenAIBaseURL (api.openai.com when empty).
func NewOpenAI(cfg Config) (*OpenAI, error) {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.OpenAIAPIKey))
	if base := strings.TrimSpace(cfg.OpenAIBaseURL); base != "" {
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("%w: invalid openai base url %q: %v", ErrUnavailable, base, err)
		}
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.RemoteModel(),
		logger: logging.NewComponentLogger(cfg.Logger, "openai"),
	}, nil
}

// Close is a no-op; the HTTP client holds no per-engine resources.
func (e *OpenAI) Close() error { return nil }

// Transcribe uploads path and maps the verbose JSON response.
func (e *OpenAI) Transcribe(ctx context.Context, path string, opts Options) (*Transcription, error) {
	opts = opts.Normalized()
	e.logger.Debug("openai transcription options not supported by the api",
		logging.Int("beam_size", opts.BeamSize),
		logging.Bool("vad_filter", opts.VADFilter),
	)

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: path,
		Language: opts.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	info := Info{}
	if lang := language.Normalize(resp.Language); lang != "" {
		info.Language = String(lang)
	}
	if resp.Duration > 0 {
		info.Duration = Float(resp.Duration)
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, Segment{
			Start: Float(seg.Start),
			End:   Float(seg.End),
			Text:  seg.Text,
		})
	}
	// Servers that ignore verbose_json only return text.
	if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		seg := Segment{Start: Float(0), Text: resp.Text}
		if info.Duration != nil {
			seg.End = Float(*info.Duration)
		}
		segments = append(segments, seg)
	}
	return FromSegments(info, segments), nil
}
