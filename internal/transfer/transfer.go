package transfer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Stage is the phase of a Transfer.
type Stage int32

const (
	StageDownloading Stage = iota
	StageUnpacking
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageDownloading:
		return "downloading"
	case StageUnpacking:
		return "unpacking"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Task is the pollable view of a running transfer.
type Task interface {
	Stage() (Stage, error)
	Current() uint64
	Total() uint64
	Close() error
}

// Options tune a Transfer. The zero value uses http.DefaultClient and the
// system temp dir.
type Options struct {
	Client   *http.Client
	TempDir  string
	SizeHint uint64
	Log      zerolog.Logger
	// Finalize runs after a successful unpack, still in StageUnpacking.
	Finalize func() error
}

// Transfer downloads an archive to a temporary file and unpacks it into a
// destination directory on its own goroutine.
type Transfer struct {
	url  string
	dest string
	opts Options

	Counter
	stage atomic.Int32

	mu  sync.Mutex
	err error

	cancel context.CancelFunc
	done   chan struct{}
}

var _ Task = (*Transfer)(nil)

// Start begins downloading url and returns immediately. The archive format is
// taken from the URL path.
func Start(ctx context.Context, url, dest string, opts Options) (*Transfer, error) {
	format, err := DetectFormat(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Transfer{url: url, dest: dest, opts: opts, cancel: cancel, done: make(chan struct{})}
	go t.run(ctx, format)
	return t, nil
}

func (t *Transfer) run(ctx context.Context, format Format) {
	defer close(t.done)
	log := t.opts.Log.With().Str("url", t.url).Logger()

	tmp, err := os.CreateTemp(t.opts.TempDir, "launcherd-*."+string(format))
	if err != nil {
		t.fail(err)
		return
	}
	defer os.Remove(tmp.Name())

	log.Debug().Str("event", "download_start").Msg("downloading archive")
	err = Download(ctx, t.opts.Client, t.url, tmp, t.opts.SizeHint, &t.Counter)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		t.fail(err)
		return
	}

	t.stage.Store(int32(StageUnpacking))
	log.Debug().Str("event", "unpack_start").Str("dest", t.dest).Msg("unpacking archive")
	if err := Unpack(ctx, tmp.Name(), format, t.dest, &t.Counter); err != nil {
		t.fail(err)
		return
	}
	if t.opts.Finalize != nil {
		if err := t.opts.Finalize(); err != nil {
			t.fail(err)
			return
		}
	}
	t.stage.Store(int32(StageDone))
	log.Debug().Str("event", "transfer_done").Msg("archive installed")
}

func (t *Transfer) fail(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Stage returns the current phase, or the error that stopped the transfer.
func (t *Transfer) Stage() (Stage, error) {
	t.mu.Lock()
	err := t.err
	t.mu.Unlock()
	return Stage(t.stage.Load()), err
}

// Wait blocks until the transfer has stopped and returns its error.
func (t *Transfer) Wait() error {
	<-t.done
	_, err := t.Stage()
	return err
}

// Close cancels an unfinished transfer and waits for its goroutine.
func (t *Transfer) Close() error {
	t.cancel()
	<-t.done
	return nil
}
