package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"launcherd/internal/catalog"
	"launcherd/internal/common/fsutil"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultAddr         = ":8420"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultPollInterval = 250 * time.Millisecond
	DefaultSubmitBuffer = 64
	DefaultHTTPTimeout  = 30 * time.Minute
	DefaultMaxBodyBytes = 1 << 20
)

// ApplyDefaults fills unset fields and expands "~" in paths.
func (c *Config) ApplyDefaults() error {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.DataDir == "" {
		c.DataDir = "~/.local/share/launcherd"
	}
	if c.ComponentsDir == "" {
		c.ComponentsDir = filepath.Join(c.DataDir, "components")
	}
	if c.Prefix.Path == "" {
		c.Prefix.Path = filepath.Join(c.DataDir, "prefix")
	}
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.SubmitBuffer <= 0 {
		c.SubmitBuffer = DefaultSubmitBuffer
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = Duration(DefaultHTTPTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}

	paths := []*string{&c.DataDir, &c.ComponentsDir, &c.TempDir, &c.Prefix.Path}
	for i := range c.Games {
		paths = append(paths, &c.Games[i].Dir)
	}
	for _, p := range paths {
		v, err := fsutil.ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// Validate reports configuration errors that would only surface later.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	if c.UpdateCheckCron != "" {
		if _, err := cron.ParseStandard(c.UpdateCheckCron); err != nil {
			errs = append(errs, fmt.Errorf("update_check_cron: %w", err))
		}
	}
	seen := map[string]bool{}
	for i, g := range c.Games {
		switch {
		case g.Variant == "":
			errs = append(errs, fmt.Errorf("games[%d]: variant is required", i))
		case !catalog.Variant(g.Variant).IsGame():
			errs = append(errs, fmt.Errorf("games[%d]: %s is not a game", i, g.Variant))
		case seen[g.Variant]:
			errs = append(errs, fmt.Errorf("games[%d]: duplicate variant %s", i, g.Variant))
		}
		seen[g.Variant] = true
		if g.Dir == "" {
			errs = append(errs, fmt.Errorf("games[%d]: dir is required", i))
		}
		if g.ManifestURL == "" {
			errs = append(errs, fmt.Errorf("games[%d]: manifest_url is required", i))
		}
	}
	if c.TempDir != "" {
		if st, err := os.Stat(c.TempDir); err != nil || !st.IsDir() {
			errs = append(errs, fmt.Errorf("temp_dir %s is not a directory", c.TempDir))
		}
	}
	return errors.Join(errs...)
}
