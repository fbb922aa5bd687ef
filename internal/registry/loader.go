package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"launcherd/internal/common/fsutil"
	"launcherd/pkg/types"
)

// LoadDir scans a components directory laid out as <dir>/<kind>/<name> and
// returns every downloaded version, sorted by kind then name. A missing
// directory yields an empty list.
func LoadDir(dir string) ([]types.Component, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return []types.Component{}, nil
	}
	kinds, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	out := []types.Component{}
	for _, k := range kinds {
		if !k.IsDir() {
			continue
		}
		versions, err := os.ReadDir(filepath.Join(abs, k.Name()))
		if err != nil {
			return nil, fmt.Errorf("read dir: %w", err)
		}
		for _, v := range versions {
			// skip files and unfinished downloads
			if !v.IsDir() || filepath.Ext(v.Name()) == ".part" {
				continue
			}
			out = append(out, types.Component{Kind: k.Name(), Name: v.Name(), Path: filepath.Join(abs, k.Name(), v.Name())})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
