package subtitles

import (
	"errors"
	"iter"
	"math"
	"testing"

	"vttgen/internal/transcribe"
)

func seg(start, end *float64, text string) transcribe.Segment {
	return transcribe.Segment{Start: start, End: end, Text: text}
}

func f(v float64) *float64 { return transcribe.Float(v) }

func sequence(segments ...transcribe.Segment) iter.Seq2[transcribe.Segment, error] {
	return transcribe.FromSegments(transcribe.Info{}, segments).Segments
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  a   b\n c ", "a b c"},
		{" \t\n ", ""},
		{"", ""},
		{"hello", "hello"},
		{"tab\tand nbsp", "tab and nbsp"},
		{"<i>kept</i>  &amp;", "<i>kept</i> &amp;"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.input); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCueFromSegmentRepairsTiming(t *testing.T) {
	tests := []struct {
		name      string
		segment   transcribe.Segment
		wantStart float64
		wantEnd   float64
	}{
		{"zero length", seg(f(1.0), f(1.0), "x"), 1.0, 1.2},
		{"missing end", seg(f(2.0), nil, "x"), 2.0, 2.2},
		{"inverted", seg(f(5.0), f(4.0), "x"), 5.0, 5.2},
		{"missing start", seg(nil, f(0.5), "x"), 0.0, 0.5},
		{"missing both", seg(nil, nil, "x"), 0.0, 0.2},
		{"valid", seg(f(0.0), f(2.4), "x"), 0.0, 2.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cue, ok := CueFromSegment(tt.segment)
			if !ok {
				t.Fatal("expected cue")
			}
			if cue.Start != tt.wantStart || math.Abs(cue.End-tt.wantEnd) > 1e-9 {
				t.Fatalf("cue = %+v, want start %v end %v", cue, tt.wantStart, tt.wantEnd)
			}
			if cue.End <= cue.Start {
				t.Fatalf("end must follow start: %+v", cue)
			}
		})
	}
}

func TestBuildCuesDropsEmptyTextAndKeepsOrder(t *testing.T) {
	cues, err := BuildCues(sequence(
		seg(f(0), f(1), " first "),
		seg(f(1), f(2), " \n\t"),
		seg(f(2), f(3), "third"),
	), nil)
	if err != nil {
		t.Fatalf("BuildCues: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "first" || cues[1].Text != "third" {
		t.Fatalf("unexpected order: %+v", cues)
	}
}

func TestBuildCuesObservesEverySegment(t *testing.T) {
	var seen []string
	_, err := BuildCues(sequence(seg(f(0), f(1), "a"), seg(f(1), f(1), "")), func(s transcribe.Segment) {
		seen = append(seen, s.Text)
	})
	if err != nil {
		t.Fatalf("BuildCues: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("observer saw %d segments, want 2", len(seen))
	}
}

func TestBuildCuesStopsOnStreamError(t *testing.T) {
	boom := errors.New("boom")
	consumed := 0
	stream := func(yield func(transcribe.Segment, error) bool) {
		consumed++
		if !yield(seg(f(0), f(1), "ok"), nil) {
			return
		}
		consumed++
		if !yield(transcribe.Segment{}, boom) {
			return
		}
		consumed++
		yield(seg(f(2), f(3), "never"), nil)
	}

	cues, err := BuildCues(stream, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected the cue before the error, got %d", len(cues))
	}
	if consumed != 2 {
		t.Fatalf("expected consumption to stop at the error, consumed %d", consumed)
	}
}
