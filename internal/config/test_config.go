package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API = APIConfig{
		Endpoint:         "http://127.0.0.1/analyze-article",
		Timeout:          5 * time.Second,
		UserAgent:        "rsrch-test/1.0",
		MaxResponseBytes: 1 << 20,
	}
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
