// Package gamediff checks installed games against a remote version manifest
// and installs the resulting update.
package gamediff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"launcherd/internal/catalog"
	"launcherd/internal/common/executil"
)

// VersionFile holds the installed version inside a game directory.
const VersionFile = ".version"

// Manifest is the remote description of the latest game version.
type Manifest struct {
	Version    string `json:"version"`
	ArchiveURL string `json:"archive_url"`
	Size       uint64 `json:"size"`
}

// Game locates one installed (or to-be-installed) game.
type Game struct {
	Variant     catalog.Variant
	Dir         string
	ManifestURL string
}

// Client resolves and installs game updates.
type Client struct {
	HTTP    *http.Client
	Runner  executil.Runner
	Hpatchz string
	TempDir string
	Log     zerolog.Logger
}

// InstalledVersion reads the version file of dir; "" means not installed.
func InstalledVersion(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, VersionFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// FetchManifest downloads and decodes the manifest at url.
func (c *Client) FetchManifest(ctx context.Context, url string) (Manifest, error) {
	var m Manifest
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return m, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return m, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return m, fmt.Errorf("fetch manifest %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version == "" {
		return m, errors.New("manifest has no version")
	}
	return m, nil
}

// Check compares the installed version of g with its manifest.
func (c *Client) Check(ctx context.Context, g Game) (*Diff, error) {
	installed, err := InstalledVersion(g.Dir)
	if err != nil {
		return nil, err
	}
	m, err := c.FetchManifest(ctx, g.ManifestURL)
	if err != nil {
		return nil, err
	}
	return &Diff{client: c, game: g, Installed: installed, Latest: m}, nil
}

// Diff is the difference between the installed game and the latest version.
type Diff struct {
	client    *Client
	game      Game
	Installed string
	Latest    Manifest
}

// NewDiff builds a Diff without a network round trip.
func NewDiff(c *Client, g Game, installed string, latest Manifest) *Diff {
	return &Diff{client: c, game: g, Installed: installed, Latest: latest}
}

// Applicable reports whether installing the diff would change anything.
func (d *Diff) Applicable() bool {
	return d.Latest.ArchiveURL != "" && d.Installed != d.Latest.Version
}

func (d *Diff) Game() Game { return d.game }

// Install starts the update pipeline. It returns a nil Updater when the diff
// is not applicable.
func (d *Diff) Install(ctx context.Context) (Updater, error) {
	if !d.Applicable() {
		return nil, nil
	}
	if err := os.MkdirAll(d.game.Dir, 0o755); err != nil {
		return nil, err
	}
	return startPipeline(ctx, d), nil
}
