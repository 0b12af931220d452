// Package sqlsafety decides whether LLM-generated SQL is safe to run
// against the shared multi-tenant database. Model output is treated as
// hostile input: nothing reaches the executor without passing Validate.
package sqlsafety

import (
	"regexp"
	"strings"
)

// codeFencePattern matches a markdown code block wrapping the whole
// response, with or without a language tag.
var codeFencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n?(.*?)\n?\\s*```$")

// Clean strips the formatting artifacts text-generation models commonly
// wrap around code (markdown fences, stray whitespace, a trailing
// semicolon). It never alters semantic SQL content. Pure and deterministic.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	return stripTrailingSemicolon(s)
}

// stripTrailingSemicolon removes one trailing semicolon plus surrounding
// whitespace. Any semicolon remaining afterwards indicates a second
// statement and is caught by the single-statement check.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}

// hasSemicolonOutsideStrings reports whether the SQL contains a semicolon
// outside of string literals and quoted identifiers. After the trailing
// semicolon is stripped, any hit means a stacked statement.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Both backslash escape (\') and the SQL doubled quote ('')
			// are handled: a doubled quote exits and immediately re-enters.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}
