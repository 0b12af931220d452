package sqlsafety

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain query untouched",
			input:    "SELECT name FROM families WHERE wedding_id = $1",
			expected: "SELECT name FROM families WHERE wedding_id = $1",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  SELECT 1  ",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon stripped",
			input:    "SELECT 1;",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon with whitespace",
			input:    "SELECT 1 ;  ",
			expected: "SELECT 1",
		},
		{
			name:     "sql code fence",
			input:    "```sql\nSELECT name FROM families WHERE wedding_id = $1\n```",
			expected: "SELECT name FROM families WHERE wedding_id = $1",
		},
		{
			name:     "bare code fence",
			input:    "```\nSELECT 1\n```",
			expected: "SELECT 1",
		},
		{
			name:     "fence with trailing semicolon inside",
			input:    "```sql\nSELECT 1;\n```",
			expected: "SELECT 1",
		},
		{
			name:     "multiline query inside fence",
			input:    "```sql\nSELECT f.name,\n  count(*)\nFROM families f\nGROUP BY f.name\n```",
			expected: "SELECT f.name,\n  count(*)\nFROM families f\nGROUP BY f.name",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n ",
			expected: "",
		},
		{
			name:     "backticks inside text are not a fence",
			input:    "SELECT '```' AS fence",
			expected: "SELECT '```' AS fence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"```sql\nSELECT 1;\n```",
		"SELECT name FROM families WHERE wedding_id = $1;",
		"",
	}
	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestHasSemicolonOutsideStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"no semicolon", "SELECT 1", false},
		{"bare semicolon", "SELECT 1; SELECT 2", true},
		{"semicolon in single quotes", "SELECT * FROM families WHERE name = 'a;b'", false},
		{"semicolon in quoted identifier", `SELECT * FROM "odd;name"`, false},
		{"doubled quote escape", "SELECT * FROM families WHERE name = 'O''Brien; the second'", false},
		{"semicolon after closed string", "SELECT 'x'; DELETE FROM families", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasSemicolonOutsideStrings(tt.input)
			if got != tt.expected {
				t.Errorf("hasSemicolonOutsideStrings(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
