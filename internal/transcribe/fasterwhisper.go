package transcribe

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"vttgen/internal/logging"
)

//go:embed assets/faster_whisper_stream.py
var helperScript []byte

const (
	exitImportFailed = 3
	exitModelLoad    = 4

	stderrTailLimit = 8 << 10
	maxLineBytes    = 4 << 20
	waitDelay       = 2 * time.Second
)

// FasterWhisper runs faster-whisper through the embedded Python helper and
// streams its segments as they are decoded.
type FasterWhisper struct {
	cfg     Config
	python  string
	logger  *slog.Logger
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewFasterWhisper resolves the Python interpreter and returns an engine.
func NewFasterWhisper(cfg Config) (*FasterWhisper, error) {
	python := strings.TrimSpace(cfg.Python)
	if python == "" {
		python = DefaultPython
	}
	resolved, err := exec.LookPath(python)
	if err != nil {
		return nil, fmt.Errorf("%w: python interpreter %q not found", ErrUnavailable, python)
	}
	return &FasterWhisper{
		cfg:     cfg,
		python:  resolved,
		logger:  logging.NewComponentLogger(cfg.Logger, "faster-whisper"),
		command: exec.CommandContext,
	}, nil
}

// Close is a no-op; each Transcribe call owns its own subprocess.
func (e *FasterWhisper) Close() error { return nil }

// Transcribe starts the helper and blocks until it reports transcription
// info, which happens once the model is loaded and the language is known.
// Segments are read from the helper's stdout while the caller ranges over them.
func (e *FasterWhisper) Transcribe(ctx context.Context, path string, opts Options) (*Transcription, error) {
	opts = opts.Normalized()

	script, cleanup, err := e.scriptPath()
	if err != nil {
		return nil, fmt.Errorf("prepare faster-whisper helper: %w", err)
	}

	args := append([]string{script}, e.buildArgs(path, opts)...)
	cmd := e.command(ctx, e.python, args...) //nolint:gosec
	stderr := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = stderr
	// Grandchildren that inherit stderr must not keep Wait blocked after a kill.
	cmd.WaitDelay = waitDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("faster-whisper stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: start %s: %v", ErrUnavailable, e.python, err)
	}

	e.logger.Debug("faster-whisper helper started",
		logging.String("python", e.python),
		logging.String("model", e.cfg.model()),
		logging.String("device", e.cfg.device()),
		logging.String("compute_type", e.cfg.computeType()),
		logging.Int("beam_size", opts.BeamSize),
		logging.Bool("vad_filter", opts.VADFilter),
		logging.String("language_hint", opts.Language),
	)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	stream := &helperStream{
		ctx:     ctx,
		cmd:     cmd,
		scanner: scanner,
		stderr:  stderr,
		cleanup: cleanup,
		logger:  e.logger,
	}

	info, err := stream.readInfo()
	if err != nil {
		_ = stream.close()
		return nil, err
	}
	return NewTranscription(info, stream.segments, stream.close), nil
}

func (e *FasterWhisper) buildArgs(path string, opts Options) []string {
	args := []string{
		"--input", path,
		"--model", e.cfg.model(),
		"--device", e.cfg.device(),
		"--compute-type", e.cfg.computeType(),
		"--beam-size", strconv.Itoa(opts.BeamSize),
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if !opts.VADFilter {
		args = append(args, "--no-vad-filter")
	}
	if opts.ConditionOnPreviousText {
		args = append(args, "--condition-on-previous-text")
	}
	return args
}

func (e *FasterWhisper) scriptPath() (string, func(), error) {
	if script := strings.TrimSpace(e.cfg.Script); script != "" {
		return script, func() {}, nil
	}
	file, err := os.CreateTemp("", "vttgen-faster-whisper-*.py")
	if err != nil {
		return "", nil, err
	}
	if _, err := file.Write(helperScript); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", nil, err
	}
	name := file.Name()
	return name, func() { _ = os.Remove(name) }, nil
}

// helperMessage is one line of the helper's stdout protocol.
type helperMessage struct {
	Type                string   `json:"type"`
	Start               *float64 `json:"start"`
	End                 *float64 `json:"end"`
	Text                string   `json:"text"`
	Language            *string  `json:"language"`
	LanguageProbability *float64 `json:"language_probability"`
	Duration            *float64 `json:"duration"`
}

type helperStream struct {
	ctx     context.Context
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	stderr  *tailBuffer
	cleanup func()
	logger  *slog.Logger

	consumed bool
	waited   bool
	waitErr  error
}

func (s *helperStream) next() (helperMessage, bool, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg helperMessage
		if err := json.Unmarshal(line, &msg); err != nil || msg.Type == "" {
			s.logger.Debug("ignoring non-protocol helper output", logging.String("line", string(line)))
			continue
		}
		return msg, true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return helperMessage{}, false, fmt.Errorf("read faster-whisper output: %w", err)
	}
	return helperMessage{}, false, nil
}

func (s *helperStream) readInfo() (Info, error) {
	for {
		msg, ok, err := s.next()
		if err != nil {
			return Info{}, err
		}
		if !ok {
			if err := s.wait(); err != nil {
				return Info{}, err
			}
			return Info{}, errors.New("faster-whisper exited without reporting transcription info")
		}
		if msg.Type == "info" {
			return Info{
				Language:            msg.Language,
				LanguageProbability: msg.LanguageProbability,
				Duration:            msg.Duration,
			}, nil
		}
		s.logger.Debug("ignoring helper message before info", logging.String("type", msg.Type))
	}
}

func (s *helperStream) segments(yield func(Segment, error) bool) {
	if s.consumed {
		yield(Segment{}, ErrSegmentsConsumed)
		return
	}
	s.consumed = true
	for {
		msg, ok, err := s.next()
		if err != nil {
			_ = s.close()
			yield(Segment{}, err)
			return
		}
		if !ok {
			break
		}
		if msg.Type != "segment" {
			continue
		}
		if !yield(Segment{Start: msg.Start, End: msg.End, Text: msg.Text}, nil) {
			return
		}
	}
	if err := s.wait(); err != nil {
		yield(Segment{}, err)
	}
}

func (s *helperStream) wait() error {
	if s.waited {
		return s.waitErr
	}
	s.waited = true
	err := s.cmd.Wait()
	s.cleanup()
	s.waitErr = s.classify(err)
	return s.waitErr
}

// close stops a helper that is still running. Errors from the kill itself are
// not interesting to the caller.
func (s *helperStream) close() error {
	if s.waited {
		return nil
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *helperStream) classify(err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	detail := lastLine(s.stderr.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case exitImportFailed, exitModelLoad:
			if detail == "" {
				detail = exitErr.Error()
			}
			return fmt.Errorf("%w: %s", ErrUnavailable, detail)
		}
	}
	if detail != "" {
		return fmt.Errorf("faster-whisper: %w: %s", err, detail)
	}
	return fmt.Errorf("faster-whisper: %w", err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

var _ io.Writer = (*tailBuffer)(nil)

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; t.limit > 0 && over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
