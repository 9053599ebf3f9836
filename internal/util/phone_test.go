package util

import "testing"

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plus space hyphen", raw: "+91 98765-43210", want: "919876543210"},
		{name: "already clean", raw: "4915112345678", want: "4915112345678"},
		{name: "parens and dots", raw: "(44) 7911.123-456", want: "447911123456"},
		{name: "surrounding whitespace", raw: "  +1 202 555 0175  ", want: "12025550175"},
		{name: "empty", raw: "", want: ""},
		{name: "no digits", raw: "+- ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeNumber(tt.raw); got != tt.want {
				t.Fatalf("SanitizeNumber(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
