package provider

import "context"

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name     string
	response string
	err      error
	prompts  []string
}

// NewMockProvider creates a new mock generation provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:     "Mock",
		response: "A fresh perspective on what matters most this week.",
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Generate returns the configured response or error and records the prompt.
func (m *MockProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// SetResponse allows customization of the generated text for testing
func (m *MockProvider) SetResponse(response string) {
	m.response = response
}

// SetError makes every Generate call fail with err
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// SetName allows customization of provider name for testing
func (m *MockProvider) SetName(name string) {
	m.name = name
}

// Prompts returns the prompts seen so far
func (m *MockProvider) Prompts() []string {
	return m.prompts
}
