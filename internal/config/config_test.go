package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate when an API key
// is present in the environment.
func validConfig() *Config {
	return &Config{
		ModelName:       DefaultModelName,
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		Host:            "127.0.0.1",
		Port:            DefaultPort,
		RateBurst:       60,
		LogLevel:        "info",
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate(nil) = %v, want ErrConfigNil", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	err := validConfig().Validate()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
	}
}

func TestValidate_AcceptsEitherKeyVariable(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() with GOOGLE_API_KEY = %v, want nil", err)
	}
}

func TestValidate_Ranges(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty model name", func(c *Config) { c.ModelName = "" }, ErrInvalidModelName},
		{"temperature too low", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"zero output tokens", func(c *Config) { c.MaxOutputTokens = 0 }, ErrInvalidMaxOutputTokens},
		{"excessive output tokens", func(c *Config) { c.MaxOutputTokens = 10000 }, ErrInvalidMaxOutputTokens},
		{"port zero", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"negative burst", func(c *Config) { c.RateBurst = -1 }, ErrInvalidRateBurst},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	if err := validConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: 8000}
	if got := cfg.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8000")
	}
}
