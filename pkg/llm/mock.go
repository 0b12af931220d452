package llm

import (
	"context"
)

// MockGenerator is a configurable mock for testing SQL generation.
// Set GenerateSQLFunc to control behavior in tests.
type MockGenerator struct {
	// GenerateSQLFunc is called when GenerateSQL is invoked.
	// If nil, returns empty string and nil error.
	GenerateSQLFunc func(ctx context.Context, systemPrompt, question string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	GenerateSQLCalls int
	LastQuestion     string
}

// NewMockGenerator creates a new mock with sensible defaults.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{ModelName: "mock-model"}
}

// GenerateSQL implements SQLGenerator.
func (m *MockGenerator) GenerateSQL(ctx context.Context, systemPrompt, question string) (string, error) {
	m.GenerateSQLCalls++
	m.LastQuestion = question
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, systemPrompt, question)
	}
	return "", nil
}

// Provider implements SQLGenerator.
func (m *MockGenerator) Provider() string {
	return "mock"
}

// Model implements SQLGenerator.
func (m *MockGenerator) Model() string {
	return m.ModelName
}
