// Package llm provides the SQL-generation clients for the reporting
// engine. Provider output is untrusted text: callers must pass it
// through the sqlsafety validator before execution, always.
package llm

import (
	"context"
)

// SQLGenerator turns a natural-language question into raw SQL text.
// Implementations make a single synchronous provider call per request:
// no retries, no streaming. The returned text may include markdown
// fences or commentary; cleaning and validation happen downstream.
type SQLGenerator interface {
	// GenerateSQL returns the provider's raw response text. An empty
	// string with nil error means the provider answered with no content.
	GenerateSQL(ctx context.Context, systemPrompt, question string) (string, error)

	// Provider returns the provider name for logging ("openai",
	// "anthropic", "gemini").
	Provider() string

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ SQLGenerator = (*OpenAIClient)(nil)
	_ SQLGenerator = (*AnthropicClient)(nil)
	_ SQLGenerator = (*MockGenerator)(nil)
)
