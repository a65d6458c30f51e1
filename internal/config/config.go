package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultEndpoint         = "https://research-analyst.onrender.com/analyze-article"
	DefaultTimeout          = 90 * time.Second
	DefaultMaxResponseBytes = 4 << 20
)

type Config struct {
	API  APIConfig `mapstructure:"api"`
	Log  LogConfig `mapstructure:"log"`
	UI   UIConfig  `mapstructure:"ui"`
	Keys KeyConfig `mapstructure:"keys"`
}

type APIConfig struct {
	Endpoint         string        `mapstructure:"endpoint" validate:"required,http_url"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0s"`
	UserAgent        string        `mapstructure:"user_agent" validate:"required"`
	MaxResponseBytes int64         `mapstructure:"max_response_bytes" validate:"gt=0"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Tags   TagColors    `mapstructure:"tags"`
	Result ResultConfig `mapstructure:"result"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Surface   string `mapstructure:"surface"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// TagColors overrides the result palette. Empty values keep the built-in
// color for that tag.
type TagColors struct {
	Mutation string `mapstructure:"mutation"`
	Pathogen string `mapstructure:"pathogen"`
	Drug     string `mapstructure:"drug"`
	Default  string `mapstructure:"default"`
	Heading  string `mapstructure:"heading"`
}

// Map returns the overrides keyed by tag name.
func (t TagColors) Map() map[string]string {
	return map[string]string{
		"mutation": t.Mutation,
		"pathogen": t.Pathogen,
		"drug":     t.Drug,
		"default":  t.Default,
		"heading":  t.Heading,
	}
}

type ResultConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width" validate:"gte=0"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width" validate:"gte=0"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit   string `mapstructure:"quit"`
	Submit string `mapstructure:"submit"`
	Raw    string `mapstructure:"raw"`
	Clear  string `mapstructure:"clear"`
	Focus  string `mapstructure:"focus"`
	Back   string `mapstructure:"back"`
	Help   string `mapstructure:"help"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			Endpoint:         DefaultEndpoint,
			Timeout:          DefaultTimeout,
			UserAgent:        "rsrch/1.0 (https://github.com/pders01/rsrch)",
			MaxResponseBytes: DefaultMaxResponseBytes,
		},
		Log: LogConfig{
			Level:      "off",
			File:       filepath.Join(homeDir, ".rsrch", "rsrch.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#C084FC",
				Secondary: "#EC4899",
				Accent:    "#A855F7",
				Surface:   "#1F2937",
				Text:      "#F3F4F6",
				Muted:     "#9CA3AF",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Result: ResultConfig{
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:   "c",
				Submit: "s",
				Raw:    "r",
				Clear:  "l",
				Focus:  "tab",
				Back:   "esc",
				Help:   "?",
			},
		},
	}
}

// settings flattens cfg into dotted viper keys. Durations are kept as
// strings so saved files stay readable.
func settings(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"api.endpoint":           cfg.API.Endpoint,
		"api.timeout":            cfg.API.Timeout.String(),
		"api.user_agent":         cfg.API.UserAgent,
		"api.max_response_bytes": cfg.API.MaxResponseBytes,

		"log.level":       cfg.Log.Level,
		"log.file":        cfg.Log.File,
		"log.max_size_mb": cfg.Log.MaxSizeMB,
		"log.max_backups": cfg.Log.MaxBackups,

		"ui.colors.primary":   cfg.UI.Colors.Primary,
		"ui.colors.secondary": cfg.UI.Colors.Secondary,
		"ui.colors.accent":    cfg.UI.Colors.Accent,
		"ui.colors.surface":   cfg.UI.Colors.Surface,
		"ui.colors.text":      cfg.UI.Colors.Text,
		"ui.colors.muted":     cfg.UI.Colors.Muted,
		"ui.colors.error":     cfg.UI.Colors.Error,
		"ui.colors.success":   cfg.UI.Colors.Success,

		"ui.tags.mutation": cfg.UI.Tags.Mutation,
		"ui.tags.pathogen": cfg.UI.Tags.Pathogen,
		"ui.tags.drug":     cfg.UI.Tags.Drug,
		"ui.tags.default":  cfg.UI.Tags.Default,
		"ui.tags.heading":  cfg.UI.Tags.Heading,

		"ui.result.word_wrap_max_width": cfg.UI.Result.WordWrapMaxWidth,
		"ui.result.word_wrap_min_width": cfg.UI.Result.WordWrapMinWidth,

		"keys.modifier":        cfg.Keys.Modifier,
		"keys.bindings.quit":   cfg.Keys.Bindings.Quit,
		"keys.bindings.submit": cfg.Keys.Bindings.Submit,
		"keys.bindings.raw":    cfg.Keys.Bindings.Raw,
		"keys.bindings.clear":  cfg.Keys.Bindings.Clear,
		"keys.bindings.focus":  cfg.Keys.Bindings.Focus,
		"keys.bindings.back":   cfg.Keys.Bindings.Back,
		"keys.bindings.help":   cfg.Keys.Bindings.Help,
	}
}

// DefaultPath returns ~/.config/rsrch/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rsrch", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
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

	v.SetEnvPrefix("RSRCH")
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

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
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
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range settings(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
