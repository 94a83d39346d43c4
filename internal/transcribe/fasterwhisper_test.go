package transcribe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newShellEngine returns an engine that runs body as the helper script under sh.
func newShellEngine(t *testing.T, body string) *FasterWhisper {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := filepath.Join(t.TempDir(), "helper.sh")
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write helper: %v", err)
	}
	engine, err := NewFasterWhisper(Config{Python: "sh", Script: script, Model: "tiny"})
	if err != nil {
		t.Fatalf("NewFasterWhisper: %v", err)
	}
	return engine
}

func collect(t *testing.T, tr *Transcription) ([]Segment, error) {
	t.Helper()
	var out []Segment
	for seg, err := range tr.Segments {
		if err != nil {
			return out, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func TestFasterWhisperStreamsInfoAndSegments(t *testing.T) {
	engine := newShellEngine(t, `
echo '{"type":"info","language":"en","language_probability":0.97,"duration":3.5}'
echo 'Downloading model... (not json)'
echo '{"type":"segment","start":0.0,"end":1.25,"text":" hello "}'
echo '{"type":"segment","start":1.25,"end":null,"text":"world"}'
`)

	tr, err := engine.Transcribe(context.Background(), "/media/in.mp4", Options{BeamSize: 5, VADFilter: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	defer tr.Close()

	if tr.Info.Language == nil || *tr.Info.Language != "en" {
		t.Fatalf("unexpected language: %v", tr.Info.Language)
	}
	if tr.Info.LanguageProbability == nil || *tr.Info.LanguageProbability != 0.97 {
		t.Fatalf("unexpected probability: %v", tr.Info.LanguageProbability)
	}
	if tr.Info.Duration == nil || *tr.Info.Duration != 3.5 {
		t.Fatalf("unexpected duration: %v", tr.Info.Duration)
	}

	segments, err := collect(t, tr)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != " hello " || *segments[0].End != 1.25 {
		t.Fatalf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].End != nil {
		t.Fatalf("expected missing end to stay nil, got %v", *segments[1].End)
	}
}

func TestFasterWhisperPassesOptionsAsArguments(t *testing.T) {
	engine := newShellEngine(t, `
echo '{"type":"info"}'
printf '{"type":"segment","start":0,"end":1,"text":"%s"}\n' "$*"
`)

	tr, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{Language: " ms ", BeamSize: 0, VADFilter: false})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	defer tr.Close()
	segments, err := collect(t, tr)
	if err != nil || len(segments) != 1 {
		t.Fatalf("segments: %v %v", segments, err)
	}
	args := segments[0].Text
	for _, want := range []string{
		"--input /media/in.wav",
		"--model tiny",
		"--device cpu",
		"--compute-type int8",
		"--beam-size 1",
		"--language ms",
		"--no-vad-filter",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in helper args %q", want, args)
		}
	}
	if strings.Contains(args, "--condition-on-previous-text") {
		t.Fatalf("context conditioning should be off by default: %q", args)
	}
	if tr.Info.Language != nil {
		t.Fatalf("expected nil language when not reported")
	}
}

func TestFasterWhisperImportFailureIsUnavailable(t *testing.T) {
	engine := newShellEngine(t, `
echo "faster_whisper import failed: No module named 'faster_whisper'" >&2
exit 3
`)

	_, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{BeamSize: 5})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "No module named") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestFasterWhisperFailureMidStreamSurfacesStderr(t *testing.T) {
	engine := newShellEngine(t, `
echo '{"type":"info","language":"en"}'
echo '{"type":"segment","start":0,"end":1,"text":"first"}'
echo 'Traceback (most recent call last):' >&2
echo 'RuntimeError: decoder exploded' >&2
exit 1
`)

	tr, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{BeamSize: 5})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	defer tr.Close()

	segments, err := collect(t, tr)
	if len(segments) != 1 {
		t.Fatalf("expected the segment before the failure, got %d", len(segments))
	}
	if err == nil || !strings.Contains(err.Error(), "decoder exploded") {
		t.Fatalf("expected decoder error, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("runtime failure must not be classified as unavailable")
	}
}

func TestFasterWhisperExitWithoutInfo(t *testing.T) {
	engine := newShellEngine(t, `exit 0`)
	if _, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{}); err == nil {
		t.Fatal("expected error when helper reports nothing")
	}
}

func TestFasterWhisperSegmentsAreSingleUse(t *testing.T) {
	engine := newShellEngine(t, `
echo '{"type":"info"}'
echo '{"type":"segment","start":0,"end":1,"text":"once"}'
`)
	tr, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	defer tr.Close()
	if _, err := collect(t, tr); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if _, err := collect(t, tr); !errors.Is(err, ErrSegmentsConsumed) {
		t.Fatalf("expected ErrSegmentsConsumed on second pass, got %v", err)
	}
}

func TestFasterWhisperCloseStopsAbandonedHelper(t *testing.T) {
	engine := newShellEngine(t, `
echo '{"type":"info"}'
echo '{"type":"segment","start":0,"end":1,"text":"one"}'
sleep 30
`)
	tr, err := engine.Transcribe(context.Background(), "/media/in.wav", Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	for seg, err := range tr.Segments {
		if err != nil {
			t.Fatalf("segment error: %v", err)
		}
		if seg.Text == "one" {
			break
		}
	}

	done := make(chan struct{})
	go func() {
		_ = tr.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not stop the helper")
	}
}

func TestNewFasterWhisperMissingInterpreter(t *testing.T) {
	_, err := NewFasterWhisper(Config{Python: "vttgen-no-such-python"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	buf := &tailBuffer{limit: 5}
	_, _ = buf.Write([]byte("abc"))
	_, _ = buf.Write([]byte("defg"))
	if got := buf.String(); got != "cdefg" {
		t.Fatalf("tail = %q", got)
	}
}
