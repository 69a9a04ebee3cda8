package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		API: APIConfig{
			BaseURL:      "http://127.0.0.1:3001",
			HTTPTimeout:  5 * time.Second,
			UserAgent:    "postdeck-test/1.0",
			AllowPrivate: true,
		},
		Pagination: d.Pagination,
		Search:     d.Search,
		Reconcile:  d.Reconcile,
		Database: DatabaseConfig{
			Path:    ":memory:", // Use in-memory database for tests
			Timeout: 1 * time.Second,
		},
		Log:  LogConfig{Level: "off"},
		UI:   d.UI,
		Keys: d.Keys,
	}
}
