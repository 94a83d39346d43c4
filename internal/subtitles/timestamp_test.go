package subtitles

import (
	"math"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{3661.5, "01:01:01.500"},
		{-4, "00:00:00.000"},
		{2.4, "00:00:02.400"},
		{59.9999, "00:01:00.000"},
		{0.0015, "00:00:00.002"},
		{100 * 3600, "100:00:00.000"},
		{math.NaN(), "00:00:00.000"},
		{math.Inf(1), "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"00:00:00.000", 0},
		{"01:01:01.500", 3661.5},
		{"02:03.250", 123.25},
		{"100:00:00.001", 360000.001},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tt.input, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"", "00:00:00,000", "1:2", "aa:bb:cc.ddd", "00:61:00.000", "00:00:00.5"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) expected error", bad)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.2, 1.2, 2.4, 59.999, 3599.5, 86400.123} {
		parsed, err := ParseTimestamp(FormatTimestamp(seconds))
		if err != nil {
			t.Fatalf("parse %v: %v", seconds, err)
		}
		if math.Abs(parsed-seconds) > 0.0005 {
			t.Fatalf("round trip %v -> %v", seconds, parsed)
		}
	}
}
