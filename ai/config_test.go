package ai

import "testing"

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			if cfg.EmbeddingHost != tt.want {
				t.Errorf("EmbeddingHost = %q, want %q", cfg.EmbeddingHost, tt.want)
			}
			if cfg.ChatHost != tt.want {
				t.Errorf("ChatHost = %q, want %q", cfg.ChatHost, tt.want)
			}
		})
	}
}

func TestConfigNormalize_Defaults(t *testing.T) {
	cfg := &Config{EmbeddingHost: "h", ChatHost: "h", EmbeddingModel: "m", ChatModel: "m"}
	cfg.Normalize()
	if cfg.APIKey != "none" {
		t.Errorf("APIKey = %q, want none", cfg.APIKey)
	}
	if cfg.MaxEmbedChars != 8000 {
		t.Errorf("MaxEmbedChars = %d", cfg.MaxEmbedChars)
	}
	if cfg.MaxTranscriptChars != 48000 {
		t.Errorf("MaxTranscriptChars = %d", cfg.MaxTranscriptChars)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config valid", func(c *Config) {}, false},
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, true},
		{"missing chat host", func(c *Config) { c.ChatHost = "" }, true},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, true},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
