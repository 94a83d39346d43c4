package subtitles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"vttgen/internal/fileutil"
)

// WebVTTHeader is the required first line of a WebVTT file.
const WebVTTHeader = "WEBVTT"

// ErrMissingHeader is returned when a file does not start with WEBVTT.
var ErrMissingHeader = errors.New("missing WEBVTT header")

// EncodeWebVTT writes cues as numbered WebVTT blocks. Cue text is written verbatim.
func EncodeWebVTT(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(WebVTTHeader + "\n\n"); err != nil {
		return err
	}
	for i, cue := range cues {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), cue.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteWebVTT creates path (and its parent directories) and writes cues to it.
func WriteWebVTT(path string, cues []Cue) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle: %w", err)
	}
	if err := EncodeWebVTT(file, cues); err != nil {
		_ = file.Close()
		return fmt.Errorf("write subtitle: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close subtitle: %w", err)
	}
	return nil
}

// ReadWebVTT parses a WebVTT file written by WriteWebVTT or another tool.
func ReadWebVTT(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle: %w", err)
	}
	defer file.Close()
	return DecodeWebVTT(file)
}

// DecodeWebVTT parses cues from r. Identifier lines and cue settings are
// accepted and dropped; NOTE, STYLE and REGION blocks are skipped. Multi-line
// cue text is joined with "\n".
func DecodeWebVTT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrMissingHeader
	}
	header := strings.TrimPrefix(strings.TrimRight(scanner.Text(), "\r"), "\uFEFF")
	if header != WebVTTHeader && !strings.HasPrefix(header, WebVTTHeader+" ") && !strings.HasPrefix(header, WebVTTHeader+"\t") {
		return nil, ErrMissingHeader
	}

	var (
		cues  []Cue
		block []string
		line  = 1
	)
	flush := func() error {
		defer func() { block = block[:0] }()
		if len(block) == 0 {
			return nil
		}
		first := block[0]
		if strings.HasPrefix(first, "NOTE") || first == "STYLE" || first == "REGION" {
			return nil
		}
		timing := 0
		if !strings.Contains(first, "-->") {
			timing = 1
		}
		if timing >= len(block) || !strings.Contains(block[timing], "-->") {
			return fmt.Errorf("line %d: cue block without timing line", line)
		}
		cue, err := parseTiming(block[timing])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		cue.Text = strings.Join(block[timing+1:], "\n")
		cues = append(cues, cue)
		return nil
	}

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseTiming(line string) (Cue, error) {
	startText, rest, _ := strings.Cut(line, "-->")
	endFields := strings.Fields(rest)
	if len(endFields) == 0 {
		return Cue{}, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return Cue{}, err
	}
	end, err := ParseTimestamp(endFields[0])
	if err != nil {
		return Cue{}, err
	}
	return Cue{Start: start, End: end}, nil
}
