package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds every setting the service reads from the environment.
// All three API settings are required; the rest have defaults.
type Config struct {
	DeepgramAPIKey string // DEEPGRAM_API_KEY
	LLMAPIURL      string // LLM_API_URL, host or full URL of the chat-completion endpoint
	LLMAPIKey      string // LLM_API_KEY, bearer token for the chat-completion endpoint
	LLMModel       string // LLM_MODEL, defaults to "qwen3"
	ListenAddr     string // LISTEN_ADDR, defaults to ":3000"
}

// Load reads the configuration from environment variables. A missing
// required variable is a startup error, not something to discover on the
// first request.
func Load() (*Config, error) {
	cfg := &Config{
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		LLMAPIURL:      os.Getenv("LLM_API_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
	}

	var missing []string
	if cfg.DeepgramAPIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	if cfg.LLMAPIURL == "" {
		missing = append(missing, "LLM_API_URL")
	}
	if cfg.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = "qwen3"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}

	return cfg, nil
}

// LLMBaseURL returns the chat-completion base URL including the /v1 prefix.
// LLM_API_URL is usually a bare host; a value that already carries a scheme
// is used as-is so tests can point at a plain-HTTP server.
func (c *Config) LLMBaseURL() string {
	u := strings.TrimRight(c.LLMAPIURL, "/")
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u + "/v1"
}
