package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// FormatTimestamp renders seconds as HH:MM:SS.mmm. Negative and non-finite
// values clamp to zero; hours are not wrapped.
func FormatTimestamp(seconds float64) string {
	total := int64(0)
	if !math.IsNaN(seconds) && !math.IsInf(seconds, 0) {
		// Half-to-even matches the rounding of the reference tooling.
		total = max(0, int64(math.RoundToEven(seconds*1000.0)))
	}
	hours := total / msPerHour
	total -= hours * msPerHour
	minutes := total / msPerMinute
	total -= minutes * msPerMinute
	secs := total / msPerSecond
	millis := total - secs*msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// ParseTimestamp parses HH:MM:SS.mmm or MM:SS.mmm into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	clock, fraction, ok := strings.Cut(value, ".")
	if !ok || len(fraction) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	secs, errS := strconv.Atoi(parts[2])
	millis, errMS := strconv.Atoi(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || secs < 0 || secs > 59 || millis < 0 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	total := int64(hours)*msPerHour + int64(minutes)*msPerMinute + int64(secs)*msPerSecond + int64(millis)
	return float64(total) / 1000, nil
}
