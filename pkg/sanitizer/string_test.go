package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Jane Doe", "Jane Doe"},
		{"leading and trailing spaces", "  Jane Doe  ", "Jane Doe"},
		{"internal runs collapse", "Jane    Doe", "Jane Doe"},
		{"tabs and newlines", "Jane\t\nDoe", "Jane Doe"},
		{"empty", "", ""},
		{"only whitespace", " \t ", ""},
		{"unicode preserved", "José  Núñez", "José Núñez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Jane.Doe@Example.COM", "jane.doe@example.com"},
		{"trims", "  jane@example.com ", "jane@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
