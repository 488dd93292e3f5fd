package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"aomame/internal/domain"
)

// Config holds all configuration for the aomame tool.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Translate TranslateConfig `yaml:"translate"`
	Memory    MemoryConfig    `yaml:"memory"`
	Languages LanguagesConfig `yaml:"languages"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Google    ProviderConfig `yaml:"google"`
	Microsoft ProviderConfig `yaml:"microsoft"`
	Systran   ProviderConfig `yaml:"systran"`
	Speech    ProviderConfig `yaml:"speech"`
}

// ProviderConfig holds the connection and batching settings of one provider.
type ProviderConfig struct {
	Host      string        `yaml:"host"`
	APIKeyEnv string        `yaml:"api_key_env"` // Environment variable for API key
	Region    string        `yaml:"region,omitempty"`
	MaxChars  int           `yaml:"max_chars"`
	MaxItems  int           `yaml:"max_items"`
	HardCap   int           `yaml:"hard_cap"`
	RPS       float64       `yaml:"rps"` // 0 = unlimited
	Timeout   time.Duration `yaml:"timeout"`
}

// Limits returns the batch limits of the provider.
func (p ProviderConfig) Limits() domain.Limits {
	return domain.Limits{MaxChars: p.MaxChars, MaxItems: p.MaxItems, HardCap: p.HardCap}
}

// APIKey reads the key from the configured environment variable.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// TranslateConfig holds translation run settings.
type TranslateConfig struct {
	CacheSize     int           `yaml:"cache_size"`
	Workers       int           `yaml:"workers"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// MemoryConfig holds translation memory settings.
type MemoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LanguagesConfig holds language list cache settings.
type LanguagesConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Google: ProviderConfig{
				Host:      "translation.googleapis.com",
				APIKeyEnv: "GOOGLE_TRANSLATE_API_KEY",
				MaxChars:  5000,
				MaxItems:  100,
				HardCap:   5000,
				Timeout:   60 * time.Second,
			},
			Microsoft: ProviderConfig{
				Host:      "api.cognitive.microsofttranslator.com",
				APIKeyEnv: "MICROSOFT_TRANSLATOR_KEY",
				MaxChars:  5000,
				MaxItems:  100,
				HardCap:   5000,
				Timeout:   60 * time.Second,
			},
			Systran: ProviderConfig{
				Host:      "systran-systran-platform-for-language-processing-v1.p.rapidapi.com",
				APIKeyEnv: "RAPIDAPI_KEY",
				MaxChars:  1000,
				MaxItems:  10,
				HardCap:   1000,
				Timeout:   60 * time.Second,
			},
			Speech: ProviderConfig{
				Host:      "speech.googleapis.com",
				APIKeyEnv: "GOOGLE_SPEECH_API_KEY",
				Timeout:   120 * time.Second,
			},
		},
		Translate: TranslateConfig{
			CacheSize:     10000,
			Workers:       1,
			RetryAttempts: 10,
			RetryDelay:    time.Second,
		},
		Memory: MemoryConfig{
			Enabled: false,
			Path:    filepath.Join(".aomame", "memory.db"),
		},
		Languages: LanguagesConfig{
			TTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Provider returns the settings of the named provider.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	switch name {
	case "google":
		return c.Providers.Google, nil
	case "microsoft":
		return c.Providers.Microsoft, nil
	case "systran":
		return c.Providers.Systran, nil
	case "speech":
		return c.Providers.Speech, nil
	case "mock":
		return ProviderConfig{MaxChars: 5000, MaxItems: 100, HardCap: 5000}, nil
	default:
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", name)
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for aomame.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "aomame.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".aomame", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MemoryPath resolves the translation memory path against dir.
func (c *Config) MemoryPath(dir string) string {
	if filepath.IsAbs(c.Memory.Path) {
		return c.Memory.Path
	}
	return filepath.Join(dir, c.Memory.Path)
}
