package main

import (
	"io"
	"math"

	"github.com/schollz/progressbar/v3"

	"vttgen/internal/transcribe"
)

// progress renders transcription progress on stderr. With a known duration
// the bar tracks the end of the latest segment in tenths of a second;
// otherwise it spins once per segment.
type progress struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	total int
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) start(info transcribe.Info) {
	p.total = -1
	if info.Duration != nil && *info.Duration > 0 && !math.IsInf(*info.Duration, 0) {
		p.total = int(math.Ceil(*info.Duration * 10))
	}
	p.bar = progressbar.NewOptions(p.total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("transcribing"),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetPredictTime(p.total > 0),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) observe(seg transcribe.Segment) {
	if p.bar == nil {
		return
	}
	if p.total < 0 || seg.End == nil {
		_ = p.bar.Add(1)
		return
	}
	_ = p.bar.Set(min(p.total, int(*seg.End*10)))
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
