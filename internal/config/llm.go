package config

// Reasoning providers.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// ValidProviders lists all supported reasoning providers.
var ValidProviders = []string{ProviderGroq, ProviderGemini}

// LLMConfig configures the reasoning provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // groq, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`    // empty = provider default
	BaseURL  string `yaml:"base_url"` // empty = provider default
	Timeout  string `yaml:"timeout"`
}

// IsValidProvider reports whether name is a supported provider.
func IsValidProvider(name string) bool {
	for _, p := range ValidProviders {
		if p == name {
			return true
		}
	}
	return false
}
