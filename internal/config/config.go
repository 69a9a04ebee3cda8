package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Search     SearchConfig     `mapstructure:"search"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	UI         UIConfig         `mapstructure:"ui"`
	Keys       KeyConfig        `mapstructure:"keys"`
}

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	AllowPrivate bool          `mapstructure:"allow_private"`
}

type PaginationConfig struct {
	DefaultPageSize int   `mapstructure:"default_page_size"`
	PageSizes       []int `mapstructure:"page_sizes"`
}

// Search engines understood by SearchConfig.Engine.
const (
	EngineSubstring = "substring"
	EngineBleve     = "bleve"
)

type SearchConfig struct {
	Engine string `mapstructure:"engine"`
}

type ReconcileConfig struct {
	// DiscardStale drops fetch completions that were overtaken by a newer
	// request instead of applying them last-completion-wins.
	DiscardStale bool `mapstructure:"discard_stale"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

// KeyBindings hold action keys. Search, Delete, Refresh, PageSize, SortName
// and SortEmail are combined with the modifier; the rest are used as is.
type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Search    string `mapstructure:"search"`
	Delete    string `mapstructure:"delete"`
	Refresh   string `mapstructure:"refresh"`
	PageSize  string `mapstructure:"page_size"`
	SortName  string `mapstructure:"sort_name"`
	SortEmail string `mapstructure:"sort_email"`
	NextPage  string `mapstructure:"next_page"`
	PrevPage  string `mapstructure:"prev_page"`
	Back      string `mapstructure:"back"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:3001",
			HTTPTimeout:  30 * time.Second,
			UserAgent:    "postdeck/1.0 (https://github.com/pders01/postdeck)",
			AllowPrivate: true,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 4,
			PageSizes:       []int{4, 8, 12},
		},
		Search: SearchConfig{
			Engine: EngineSubstring,
		},
		Reconcile: ReconcileConfig{
			DiscardStale: true,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".postdeck.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".postdeck", "postdeck.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Search:    "s",
				Delete:    "x",
				Refresh:   "r",
				PageSize:  "p",
				SortName:  "n",
				SortEmail: "e",
				NextPage:  "right",
				PrevPage:  "left",
				Back:      "esc",
			},
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// DefaultPath returns ~/.config/postdeck/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "postdeck", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(toMap(defaultConfig()), "") {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("POSTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == memoryDatabase {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// toMap lays the config out with its file keys. Durations become strings so
// the TOML output stays readable.
func toMap(c *Config) map[string]any {
	colors := c.UI.Colors
	keys := c.Keys.Bindings
	return map[string]any{
		"api": map[string]any{
			"base_url":      c.API.BaseURL,
			"http_timeout":  c.API.HTTPTimeout.String(),
			"user_agent":    c.API.UserAgent,
			"allow_private": c.API.AllowPrivate,
		},
		"pagination": map[string]any{
			"default_page_size": c.Pagination.DefaultPageSize,
			"page_sizes":        append([]int(nil), c.Pagination.PageSizes...),
		},
		"search": map[string]any{
			"engine": c.Search.Engine,
		},
		"reconcile": map[string]any{
			"discard_stale": c.Reconcile.DiscardStale,
		},
		"database": map[string]any{
			"path":    c.Database.Path,
			"timeout": c.Database.Timeout.String(),
		},
		"log": map[string]any{
			"level": c.Log.Level,
			"file":  c.Log.File,
		},
		"ui": map[string]any{
			"colors": map[string]any{
				"primary":    colors.Primary,
				"secondary":  colors.Secondary,
				"accent":     colors.Accent,
				"background": colors.Background,
				"surface":    colors.Surface,
				"text":       colors.Text,
				"muted":      colors.Muted,
				"error":      colors.Error,
				"success":    colors.Success,
			},
		},
		"keys": map[string]any{
			"modifier": c.Keys.Modifier,
			"bindings": map[string]any{
				"quit":       keys.Quit,
				"search":     keys.Search,
				"delete":     keys.Delete,
				"refresh":    keys.Refresh,
				"page_size":  keys.PageSize,
				"sort_name":  keys.SortName,
				"sort_email": keys.SortEmail,
				"next_page":  keys.NextPage,
				"prev_page":  keys.PrevPage,
				"back":       keys.Back,
			},
		},
	}
}

func flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(nested, key) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// Render returns the configuration as TOML.
func Render(config *Config) ([]byte, error) {
	data, err := toml.Marshal(toMap(config))
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

func Save(config *Config, path string) error {
	data, err := Render(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
