package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  ", ""},
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fre", "fr"},
		{"may", "ms"},
		{"english", "en"},
		{"Malay", "ms"},
		{"arabic", "ar"},
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"zh_TW", "zh"},
		{"tl-PH", "tl"},
		{"tl", "tl"},
		{"jw", "jw"},
		{"mo", "mo"},
		{"iw", "iw"},
		{"yue", "yue"},
		{"haw", "haw"},
		{"not a language", "not a language"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ms", "Malay"},
		{"english", "English"},
		{"de-AT", "German"},
		{"", "Unknown"},
		{"not a language", "NOT A LANGUAGE"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
