package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified"; ApplyDefaults fills them in.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	DataDir       string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	ComponentsDir string `json:"components_dir" yaml:"components_dir" toml:"components_dir"`
	TempDir       string `json:"temp_dir" yaml:"temp_dir" toml:"temp_dir"`

	PollInterval    Duration `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	SubmitBuffer    int      `json:"submit_buffer" yaml:"submit_buffer" toml:"submit_buffer"`
	UpdateCheckCron string   `json:"update_check_cron" yaml:"update_check_cron" toml:"update_check_cron"`
	HTTPTimeout     Duration `json:"http_timeout" yaml:"http_timeout" toml:"http_timeout"`

	Hpatchz    string `json:"hpatchz" yaml:"hpatchz" toml:"hpatchz"`
	Wineboot   string `json:"wineboot" yaml:"wineboot" toml:"wineboot"`
	Winetricks string `json:"winetricks" yaml:"winetricks" toml:"winetricks"`

	Wine   *Component `json:"wine,omitempty" yaml:"wine,omitempty" toml:"wine,omitempty"`
	DXVK   *Component `json:"dxvk,omitempty" yaml:"dxvk,omitempty" toml:"dxvk,omitempty"`
	Prefix Prefix     `json:"prefix" yaml:"prefix" toml:"prefix"`
	Games  []Game     `json:"games" yaml:"games" toml:"games"`

	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORS         CORS  `json:"cors" yaml:"cors" toml:"cors"`
}

// Component selects the wine or dxvk version the launcher should have.
type Component struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Title string `json:"title" yaml:"title" toml:"title"`
	URL   string `json:"url" yaml:"url" toml:"url"`
}

// Prefix locates the wine prefix.
type Prefix struct {
	Path             string `json:"path" yaml:"path" toml:"path"`
	InstallCorefonts bool   `json:"install_corefonts" yaml:"install_corefonts" toml:"install_corefonts"`
}

// Game locates one game installation and its version manifest.
type Game struct {
	Variant     string `json:"variant" yaml:"variant" toml:"variant"`
	Dir         string `json:"dir" yaml:"dir" toml:"dir"`
	ManifestURL string `json:"manifest_url" yaml:"manifest_url" toml:"manifest_url"`
}

// CORS configures the optional CORS middleware.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Duration is a time.Duration written as a string ("250ms", "2m").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
