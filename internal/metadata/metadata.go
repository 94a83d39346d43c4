// Package metadata renders the per-run summary record written next to a
// subtitle file and printed on stdout.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"vttgen/internal/fileutil"
)

// Record summarizes one generation run. Field order is the serialized key order.
type Record struct {
	Language            *string  `json:"language"`
	LanguageProbability *float64 `json:"language_probability"`
	DurationSeconds     *float64 `json:"duration_seconds"`
	CueCount            int      `json:"cue_count"`
	Input               string   `json:"input"`
	Output              string   `json:"output"`
	Model               string   `json:"model"`
	Device              string   `json:"device"`
	ComputeType         string   `json:"compute_type"`
}

// Write stores rec at path as indented ASCII JSON. An empty path is a no-op.
func Write(path string, rec Record) error {
	if path == "" {
		return nil
	}
	data, err := encode(rec, "  ")
	if err != nil {
		return err
	}
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Line renders rec as a single line of ASCII JSON without a trailing newline.
func Line(rec Record) (string, error) {
	data, err := encode(rec, "")
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(data, "\n")), nil
}

func encode(rec Record, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if indent != "" {
		// Encode terminates with a newline; the file form has none.
		return asciiEscape(bytes.TrimRight(buf.Bytes(), "\n")), nil
	}
	return asciiEscape(buf.Bytes()), nil
}

// asciiEscape rewrites every non-ASCII rune as \uXXXX, using surrogate pairs
// above the BMP. Raw non-ASCII bytes only occur inside JSON strings, so the
// result stays valid JSON.
func asciiEscape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}
