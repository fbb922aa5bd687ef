package gamediff

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"launcherd/internal/common/executil"
	"launcherd/internal/transfer"
)

// Stage is the phase of a running update, in order.
type Stage int32

const (
	StagePreparingTransition Stage = iota
	StageDownloading
	StageUnpacking
	StageFinishingTransition
	StageApplyingHdiffPatches
	StageDeletingObsoleteFiles
	StageFinished
)

// Updater is the pollable view of a running update.
type Updater interface {
	Stage() (Stage, error)
	Current() uint64
	Total() uint64
	Close() error
}

// Files the update archive may carry at its root.
const (
	hdiffList  = "hdifffiles.txt"
	deleteList = "deletefiles.txt"
	transition = ".transition"
)

type pipeline struct {
	diff *Diff

	transfer.Counter
	stage atomic.Int32

	mu  sync.Mutex
	err error

	cancel context.CancelFunc
	done   chan struct{}
}

func startPipeline(ctx context.Context, d *Diff) *pipeline {
	ctx, cancel := context.WithCancel(ctx)
	p := &pipeline{diff: d, cancel: cancel, done: make(chan struct{})}
	go p.run(ctx)
	return p
}

func (p *pipeline) Stage() (Stage, error) {
	p.mu.Lock()
	err := p.err
	p.mu.Unlock()
	return Stage(p.stage.Load()), err
}

func (p *pipeline) Close() error {
	p.cancel()
	<-p.done
	return nil
}

func (p *pipeline) enter(s Stage, total uint64) {
	p.Reset(total)
	p.stage.Store(int32(s))
}

func (p *pipeline) run(ctx context.Context) {
	defer close(p.done)
	c := p.diff.client
	g := p.diff.game
	log := c.Log.With().Str("variant", string(g.Variant)).Str("version", p.diff.Latest.Version).Logger()

	if err := p.install(ctx); err != nil {
		log.Warn().Str("event", "update_failed").Err(err).Msg("game update failed")
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		return
	}
	log.Info().Str("event", "update_installed").Msg("game updated")
}

func (p *pipeline) install(ctx context.Context) error {
	c := p.diff.client
	g := p.diff.game
	tdir := filepath.Join(g.Dir, transition)

	p.enter(StagePreparingTransition, 1)
	if err := os.RemoveAll(tdir); err != nil {
		return err
	}
	if err := os.MkdirAll(tdir, 0o755); err != nil {
		return err
	}
	p.Finish()

	format, err := transfer.DetectFormat(p.diff.Latest.ArchiveURL)
	if err != nil {
		return err
	}
	p.enter(StageDownloading, p.diff.Latest.Size)
	tmp, err := os.CreateTemp(c.TempDir, "launcherd-diff-*."+string(format))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	err = transfer.Download(ctx, c.HTTP, p.diff.Latest.ArchiveURL, tmp, p.diff.Latest.Size, &p.Counter)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	p.enter(StageUnpacking, 0)
	if err := transfer.Unpack(ctx, tmp.Name(), format, tdir, &p.Counter); err != nil {
		return err
	}

	files, err := listFiles(tdir)
	if err != nil {
		return err
	}
	p.enter(StageFinishingTransition, uint64(len(files)))
	for _, rel := range files {
		dst := filepath.Join(g.Dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(tdir, rel), dst); err != nil {
			return err
		}
		p.Add(1)
	}
	if err := os.RemoveAll(tdir); err != nil {
		return err
	}

	patches, err := readHdiffList(filepath.Join(g.Dir, hdiffList))
	if err != nil {
		return err
	}
	p.enter(StageApplyingHdiffPatches, uint64(len(patches)))
	for _, rel := range patches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.applyPatch(ctx, g.Dir, rel); err != nil {
			return err
		}
		p.Add(1)
	}
	_ = os.Remove(filepath.Join(g.Dir, hdiffList))

	obsolete, err := readLines(filepath.Join(g.Dir, deleteList))
	if err != nil {
		return err
	}
	p.enter(StageDeletingObsoleteFiles, uint64(len(obsolete)))
	for _, rel := range obsolete {
		target, err := transfer.SafeJoin(g.Dir, rel)
		if err != nil {
			return fmt.Errorf("%s: %w", deleteList, err)
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		p.Add(1)
	}
	_ = os.Remove(filepath.Join(g.Dir, deleteList))

	if err := os.WriteFile(filepath.Join(g.Dir, VersionFile), []byte(p.diff.Latest.Version+"\n"), 0o644); err != nil {
		return err
	}
	p.enter(StageFinished, 1)
	p.Finish()
	return nil
}

// applyPatch runs hpatchz on <rel> with <rel>.hdiff and replaces the file.
func (c *Client) applyPatch(ctx context.Context, dir, rel string) error {
	target, err := transfer.SafeJoin(dir, rel)
	if err != nil {
		return fmt.Errorf("%s: %w", hdiffList, err)
	}
	patch := target + ".hdiff"
	out := target + ".patched"
	bin := c.Hpatchz
	if bin == "" {
		bin = "hpatchz"
	}
	if c.Runner == nil {
		return errors.New("no command runner configured for hdiff patches")
	}
	if err := c.Runner.Run(ctx, executil.Cmd{Path: bin, Args: []string{"-f", target, patch, out}, Dir: dir}); err != nil {
		return fmt.Errorf("patch %s: %w", rel, err)
	}
	if err := os.Rename(out, target); err != nil {
		return err
	}
	return os.Remove(patch)
}

func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

// readHdiffList parses hdifffiles.txt: one JSON object per line with the
// patched file under "remoteName".
func readHdiffList(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		var entry struct {
			RemoteName string `json:"remoteName"`
		}
		if err := json.Unmarshal([]byte(l), &entry); err != nil {
			return nil, fmt.Errorf("%s: %w", hdiffList, err)
		}
		if entry.RemoteName != "" {
			out = append(out, entry.RemoteName)
		}
	}
	return out, nil
}

// readLines returns the non-empty lines of path; a missing file is empty.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		if l := strings.TrimSpace(s.Text()); l != "" {
			out = append(out, l)
		}
	}
	return out, s.Err()
}
