// Package components downloads runtime components (wine builds, dxvk) into
// <root>/<kind>/<name>.
package components

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"launcherd/internal/catalog"
	"launcherd/internal/common/fsutil"
	"launcherd/internal/transfer"
)

// Version is one downloadable build of a component.
type Version struct {
	Kind  catalog.Variant `json:"kind" yaml:"kind" toml:"kind"`
	Name  string          `json:"name" yaml:"name" toml:"name"`
	Title string          `json:"title" yaml:"title" toml:"title"`
	URL   string          `json:"url" yaml:"url" toml:"url"`
}

// DisplayTitle falls back to the version name.
func (v Version) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.Name
}

func (v Version) Validate() error {
	if v.Kind == "" || v.Name == "" || v.URL == "" {
		return fmt.Errorf("component version needs kind, name and url (got %q/%q)", v.Kind, v.Name)
	}
	if v.Name != filepath.Base(v.Name) || v.Name == "." || v.Name == ".." {
		return fmt.Errorf("component name %q must be a plain folder name", v.Name)
	}
	return nil
}

// Downloader installs component versions under Root.
type Downloader struct {
	Root    string
	Client  *http.Client
	TempDir string
	Log     zerolog.Logger
}

// Path is the folder a version is installed into.
func (d *Downloader) Path(v Version) string {
	return filepath.Join(d.Root, string(v.Kind), v.Name)
}

// IsDownloaded reports whether the version folder exists.
func (d *Downloader) IsDownloaded(v Version) bool {
	return fsutil.DirExists(d.Path(v))
}

// Download starts fetching v. The archive is unpacked next to the final folder
// and promoted into place only once complete.
func (d *Downloader) Download(ctx context.Context, v Version) (transfer.Task, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	dst := d.Path(v)
	part := dst + ".part"
	if err := os.RemoveAll(part); err != nil {
		return nil, err
	}
	log := d.Log.With().Str("component", string(v.Kind)).Str("version", v.Name).Logger()
	log.Info().Str("event", "component_download").Str("url", v.URL).Msg("downloading component")
	t, err := transfer.Start(ctx, v.URL, part, transfer.Options{
		Client:   d.Client,
		TempDir:  d.TempDir,
		Log:      log,
		Finalize: func() error { return fsutil.Promote(part, dst) },
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
