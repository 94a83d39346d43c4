package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// wordCodes maps the full language words some OpenAI-compatible servers
// report to ISO 639-1 codes.
var wordCodes = map[string]string{
	"arabic":     "ar",
	"castilian":  "es",
	"chinese":    "zh",
	"czech":      "cs",
	"danish":     "da",
	"dutch":      "nl",
	"english":    "en",
	"finnish":    "fi",
	"flemish":    "nl",
	"french":     "fr",
	"german":     "de",
	"greek":      "el",
	"hebrew":     "he",
	"hindi":      "hi",
	"indonesian": "id",
	"italian":    "it",
	"japanese":   "ja",
	"korean":     "ko",
	"malay":      "ms",
	"mandarin":   "zh",
	"norwegian":  "no",
	"persian":    "fa",
	"polish":     "pl",
	"portuguese": "pt",
	"russian":    "ru",
	"spanish":    "es",
	"swedish":    "sv",
	"tamil":      "ta",
	"thai":       "th",
	"turkish":    "tr",
	"ukrainian":  "uk",
	"urdu":       "ur",
	"vietnamese": "vi",
}

// bibliographic holds ISO 639-2/B codes that differ from the terminology
// codes understood by the tag parser.
var bibliographic = map[string]string{
	"chi": "zh",
	"cze": "cs",
	"dut": "nl",
	"fre": "fr",
	"ger": "de",
	"gre": "el",
	"may": "ms",
	"per": "fa",
}

// Normalize folds a user hint or engine-reported language into the code the
// engines expect. Full language words and ISO 639-2 codes with an ISO 639-1
// equivalent map to the short code, tags such as "pt-BR" keep only their
// language part, and any other 2 or 3 letter code passes through unchanged
// so Whisper-specific codes ("jw", "tl") survive. Anything else is returned
// lowercased for the engine to reject with its own message.
func Normalize(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}
	if code, ok := wordCodes[trimmed]; ok {
		return code
	}
	if base, _, found := strings.Cut(strings.ReplaceAll(trimmed, "_", "-"), "-"); found && isCode(base) {
		return normalizeCode(base)
	}
	if isCode(trimmed) {
		return normalizeCode(trimmed)
	}
	return trimmed
}

func normalizeCode(code string) string {
	if len(code) == 2 {
		return code
	}
	if short, ok := bibliographic[code]; ok {
		return short
	}
	// Only exact ISO 639-2/T matches are shortened; the parser would also
	// replace deprecated or macrolanguage codes.
	if base, err := xlanguage.ParseBase(code); err == nil {
		if short := base.String(); len(short) == 2 && base.ISO3() == code {
			return short
		}
	}
	return code
}

func isCode(value string) bool {
	if len(value) < 2 || len(value) > 3 {
		return false
	}
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// DisplayName returns the English name for a language code, "Unknown" for an
// empty code, or the upper-cased code when no name is known.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if normalized == "" {
		return "Unknown"
	}
	if tag, err := xlanguage.Parse(normalized); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(normalized)
}
