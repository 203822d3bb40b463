package mocks

import "context"

// MockTextGenerator is a mock implementation of TextGenerator
type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Prompts      []string
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}
