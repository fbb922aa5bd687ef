package e2e

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"launcherd/internal/common/executil"
	"launcherd/internal/config"
	"launcherd/internal/gamediff"
	"launcherd/internal/httpapi"
	"launcherd/internal/launcher"
	"launcherd/internal/prefix"
	"launcherd/pkg/types"
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func tarXz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(xw)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

// upstream plays the game CDN and the component release host.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	game := zipArchive(t, map[string]string{"GenshinImpact.exe": "exe", "data/asset.bin": "asset"})
	wine := tarXz(t, map[string]string{"wine-ge-8-26/bin/wine": "#!/bin/sh\n"})

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/genshin/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(gamediff.Manifest{
			Version:    "4.1.0",
			ArchiveURL: srv.URL + "/genshin/game_4.1.0.zip",
			Size:       uint64(len(game)),
		})
	})
	mux.HandleFunc("/genshin/game_4.1.0.zip", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(game) })
	mux.HandleFunc("/wine/wine-ge-8-26.tar.xz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(wine) })
	// honkai has no manifest: every install fails at resolve time
	return srv
}

type recordingRunner struct {
	mu   sync.Mutex
	cmds []executil.Cmd
}

func (r *recordingRunner) Run(_ context.Context, c executil.Cmd) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, c)
	return nil
}

func (r *recordingRunner) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.cmds {
		out = append(out, c.Path)
	}
	return out
}

type daemon struct {
	api    *httptest.Server
	svc    *launcher.Service
	cfg    config.Config
	runner *recordingRunner
}

// newDaemon runs a launcher service with the real capabilities against
// upstream, except for wine tools which are recorded instead of executed.
func newDaemon(t *testing.T, up *httptest.Server, edit func(*config.Config)) *daemon {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		DataDir:       root,
		ComponentsDir: root + "/components",
		TempDir:       t.TempDir(),
		Wineboot:      "/usr/bin/wineboot",
		Winetricks:    "/usr/bin/winetricks",
		Games: []config.Game{
			{Variant: "genshin", Dir: root + "/games/genshin", ManifestURL: up.URL + "/genshin/manifest.json"},
			{Variant: "honkai", Dir: root + "/games/honkai", ManifestURL: up.URL + "/honkai/manifest.json"},
		},
	}
	if edit != nil {
		edit(&cfg)
	}
	require.NoError(t, cfg.ApplyDefaults())
	cfg.PollInterval = config.Duration(5 * time.Millisecond)
	require.NoError(t, cfg.Validate())
	require.NoError(t, os.MkdirAll(cfg.ComponentsDir, 0o755))

	runner := &recordingRunner{}
	svc, err := launcher.New(launcher.Options{
		Config:   cfg,
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
		Prefixes: &prefix.Builder{Wineboot: cfg.Wineboot, Winetricks: cfg.Winetricks, Runner: runner},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	api := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		api.Close()
		cancel()
		require.NoError(t, <-done)
	})
	require.Eventually(t, svc.Ready, time.Second, time.Millisecond)
	return &daemon{api: api, svc: svc, cfg: cfg, runner: runner}
}

func (d *daemon) post(t *testing.T, req types.EnqueueRequest) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(d.api.URL+"/jobs", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func (d *daemon) get(t *testing.T, path string, out any) {
	t.Helper()
	resp, err := http.Get(d.api.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// stream is an open /events connection.
type stream struct {
	r     *bufio.Reader
	close func()
}

func (d *daemon) events(t *testing.T) *stream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.api.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := &stream{r: bufio.NewReader(resp.Body), close: func() { cancel(); resp.Body.Close() }}
	t.Cleanup(s.close)
	line, err := s.r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": subscribed\n", line)
	return s
}

// until reads events until one of type typ arrives for job, returning every
// event of that job seen on the way.
func (s *stream) until(t *testing.T, job, typ string) []types.Event {
	t.Helper()
	var seen []types.Event
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		line, err := s.r.ReadString('\n')
		require.NoError(t, err)
		data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
		if !ok {
			continue
		}
		var e types.Event
		require.NoError(t, json.Unmarshal([]byte(data), &e))
		if e.JobID != job {
			continue
		}
		seen = append(seen, e)
		if e.Type == typ {
			return seen
		}
	}
	t.Fatalf("no %s event for job %s", typ, job)
	return nil
}
