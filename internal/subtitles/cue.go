package subtitles

import (
	"fmt"
	"iter"
	"strings"

	"vttgen/internal/transcribe"
)

// MinCueDuration is the length given to cues whose end does not follow their start.
const MinCueDuration = 0.2

// Cue is one subtitle entry. End is always greater than Start.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SegmentObserver is notified of every raw segment, including skipped ones.
type SegmentObserver func(transcribe.Segment)

// NormalizeText trims s and collapses internal whitespace runs to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CueFromSegment converts one segment. The second result is false when the
// segment has no text after normalization.
func CueFromSegment(seg transcribe.Segment) (Cue, bool) {
	text := NormalizeText(seg.Text)
	if text == "" {
		return Cue{}, false
	}
	start := 0.0
	if seg.Start != nil {
		start = *seg.Start
	}
	end := start
	if seg.End != nil {
		end = *seg.End
	}
	if end <= start {
		end = start + MinCueDuration
	}
	return Cue{Start: start, End: end, Text: text}, true
}

// BuildCues ranges over segments exactly once and returns cues in stream
// order. The first error yielded by the sequence stops consumption.
func BuildCues(segments iter.Seq2[transcribe.Segment, error], observe SegmentObserver) ([]Cue, error) {
	var cues []Cue
	index := 0
	for seg, err := range segments {
		if err != nil {
			return cues, fmt.Errorf("segment %d: %w", index+1, err)
		}
		index++
		if observe != nil {
			observe(seg)
		}
		if cue, ok := CueFromSegment(seg); ok {
			cues = append(cues, cue)
		}
	}
	return cues, nil
}
