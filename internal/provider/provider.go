package provider

import "context"

// Provider defines the unified interface for text generation providers
// used to write newsletter descriptions.
type Provider interface {
	// Generate produces text for the given prompt
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// GetName returns the name of the provider
	GetName() string
}

// Options holds per-request generation parameters.
type Options struct {
	Model       string  // Model override (empty uses the provider default)
	MaxTokens   int     // Maximum number of tokens to generate
	Temperature float32 // Temperature for randomness (0.0 to 1.0)
}

// ProviderType represents the type of generation provider
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeGemini    ProviderType = "gemini"
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeMock      ProviderType = "mock"
)

// ProviderFactory creates generation providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a generation provider of the specified type.
// The config map carries provider credentials and overrides: "api_key",
// "model", "base_url".
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeOpenAI:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAIProvider(apiKey, config["model"], config["base_url"]), nil
	case ProviderTypeAnthropic:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewAnthropicProvider(apiKey, config["model"]), nil
	case ProviderTypeGemini:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGeminiProvider(apiKey, config["model"])
	case ProviderTypeOllama:
		return NewOllamaProvider(config["base_url"], config["model"]), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeOpenAI,
		ProviderTypeAnthropic,
		ProviderTypeGemini,
		ProviderTypeOllama,
		ProviderTypeMock,
	}
}
