package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bulletin/internal/core"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Site       Site       `mapstructure:"site"`
	WordPress  WordPress  `mapstructure:"wordpress"`
	AI         AI         `mapstructure:"ai"`
	Newsletter Newsletter `mapstructure:"newsletter"`
	Sendy      Sendy      `mapstructure:"sendy"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Site holds the publishing site identity used in newsletters
type Site struct {
	Name        string            `mapstructure:"name"`
	URL         string            `mapstructure:"url"`
	Tagline     string            `mapstructure:"tagline"`
	LogoURL     string            `mapstructure:"logo_url"`
	FromName    string            `mapstructure:"from_name"`
	FromEmail   string            `mapstructure:"from_email"`
	ReplyTo     string            `mapstructure:"reply_to"`
	SocialLinks map[string]string `mapstructure:"social_links"`
}

// WordPress holds the article source configuration
type WordPress struct {
	BaseURL string `mapstructure:"base_url"`
}

// AI holds description generation configuration
type AI struct {
	Provider  string          `mapstructure:"provider"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OllamaConfig holds local Ollama configuration
type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Newsletter holds assembly configuration
type Newsletter struct {
	MaxDescriptionWords int    `mapstructure:"max_description_words"`
	Template            string `mapstructure:"template"`
	OutputDirectory     string `mapstructure:"output_directory"`
}

// Sendy holds delivery configuration
type Sendy struct {
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
	ListID  string `mapstructure:"list_id"`
	BrandID string `mapstructure:"brand_id"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".bulletin")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".bulletin-data")

	// Site defaults
	viper.SetDefault("site.name", "Newsletter")

	// AI defaults
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "30s")
	viper.SetDefault("ai.anthropic.model", "claude-3-5-haiku-latest")
	viper.SetDefault("ai.anthropic.timeout", "30s")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 256)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ai.ollama.model", "llama3.2")
	viper.SetDefault("ai.ollama.timeout", "60s")

	// Newsletter defaults
	viper.SetDefault("newsletter.max_description_words", 14)
	viper.SetDefault("newsletter.template", "default")
	viper.SetDefault("newsletter.output_directory", "newsletters")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// OpenAI API key
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	// Anthropic API key
	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
		"CLAUDE_API_KEY",
	})

	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Provider selection
	bindEnvKeys("ai.provider", []string{
		"AI_PROVIDER",
		"BULLETIN_AI_PROVIDER",
	})

	// Sendy
	bindEnvKeys("sendy.url", []string{
		"SENDY_URL",
		"SENDY_API_URL",
	})

	bindEnvKeys("sendy.api_key", []string{
		"SENDY_API_KEY",
	})

	bindEnvKeys("sendy.list_id", []string{
		"SENDY_LIST_ID",
	})

	// WordPress source
	bindEnvKeys("wordpress.base_url", []string{
		"WORDPRESS_URL",
		"WP_BASE_URL",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"BULLETIN_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	// Expand paths
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Newsletter.OutputDirectory != "" {
		config.Newsletter.OutputDirectory = expandPath(config.Newsletter.OutputDirectory)
	}

	// Validate durations
	durations := map[string]string{
		"ai.openai.timeout":    config.AI.OpenAI.Timeout,
		"ai.anthropic.timeout": config.AI.Anthropic.Timeout,
		"ai.gemini.timeout":    config.AI.Gemini.Timeout,
		"ai.ollama.timeout":    config.AI.Ollama.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "openai":
		if !isValidAPIKey(config.AI.OpenAI.APIKey) {
			errors = append(errors, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	case "anthropic":
		if !isValidAPIKey(config.AI.Anthropic.APIKey) {
			errors = append(errors, "Anthropic API key is required. Set ANTHROPIC_API_KEY environment variable or ai.anthropic.api_key in config file")
		}
	case "gemini":
		if !isValidAPIKey(config.AI.Gemini.APIKey) {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
		}
	case "ollama", "mock":
		// No API key needed for these providers
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: openai, anthropic, gemini, ollama, mock", config.AI.Provider))
	}

	// Sendy settings come as a pair
	if config.Sendy.URL != "" && config.Sendy.APIKey == "" {
		errors = append(errors, "Sendy API key is required when a Sendy URL is configured. Set SENDY_API_KEY environment variable")
	}
	if config.Sendy.APIKey != "" && config.Sendy.URL == "" {
		errors = append(errors, "Sendy URL is required when a Sendy API key is configured. Set SENDY_URL environment variable")
	}

	if config.Newsletter.MaxDescriptionWords <= 0 {
		errors = append(errors, "newsletter.max_description_words must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App               { return Get().App }
func GetSite() Site             { return Get().Site }
func GetAI() AI                 { return Get().AI }
func GetNewsletter() Newsletter { return Get().Newsletter }
func GetSendy() Sendy           { return Get().Sendy }
func GetLogging() Logging       { return Get().Logging }

// Specific convenience getters for frequently accessed values
func GetAIProvider() string  { return Get().AI.Provider }
func GetDataDir() string     { return Get().App.DataDir }
func GetSendyListID() string { return Get().Sendy.ListID }
func IsDebugMode() bool      { return Get().App.Debug }

// SiteInfo converts the site section into the shape the newsletter
// builder and delivery client consume.
func (c *Config) SiteInfo() core.SiteInfo {
	return core.SiteInfo{
		Name:        c.Site.Name,
		URL:         c.Site.URL,
		Tagline:     c.Site.Tagline,
		LogoURL:     c.Site.LogoURL,
		FromName:    c.Site.FromName,
		FromEmail:   c.Site.FromEmail,
		ReplyTo:     c.Site.ReplyTo,
		SocialLinks: c.Site.SocialLinks,
	}
}

// HasSendy returns true if Sendy delivery is configured
func HasSendy() bool {
	c := Get()
	return c.Sendy.URL != "" && isValidAPIKey(c.Sendy.APIKey)
}

// GetProviderConfig returns configuration for creating an AI provider
func GetProviderConfig(providerType string) map[string]string {
	config := Get()

	switch providerType {
	case "openai":
		return map[string]string{
			"api_key":  config.AI.OpenAI.APIKey,
			"model":    config.AI.OpenAI.Model,
			"base_url": config.AI.OpenAI.BaseURL,
		}
	case "anthropic":
		return map[string]string{
			"api_key": config.AI.Anthropic.APIKey,
			"model":   config.AI.Anthropic.Model,
		}
	case "gemini":
		return map[string]string{
			"api_key": config.AI.Gemini.APIKey,
			"model":   config.AI.Gemini.Model,
		}
	case "ollama":
		return map[string]string{
			"base_url": config.AI.Ollama.BaseURL,
			"model":    config.AI.Ollama.Model,
		}
	default:
		return map[string]string{}
	}
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-openai-key", "your-anthropic-key", "your-gemini-key",
		"your-sendy-key", "YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
