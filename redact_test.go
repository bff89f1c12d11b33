package main

import "testing"

func TestRedactDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"your code is 123456", "your code is [REDACTED]"},
		{"call back at 4155551234", "call back at [REDACTED]"},
		{"meeting at 10:30 on 2026-03-02", "meeting at 10:30 on 2026-03-02"},
		{"order 12345678901 shipped", "order 12345678901 shipped"},
		{"codes 123456 and 654321", "codes [REDACTED] and [REDACTED]"},
		{"short 12345 stays", "short 12345 stays"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := redactDigits(tt.input); got != tt.want {
			t.Errorf("redactDigits(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
