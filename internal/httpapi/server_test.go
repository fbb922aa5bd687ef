package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"launcherd/internal/bridge"
	"launcherd/internal/catalog"
	"launcherd/internal/launcher"
	"launcherd/internal/tasks"
	"launcherd/pkg/types"
)

type call struct {
	op      string
	variant catalog.Variant
	arg     string
	flag    bool
}

type mockService struct {
	status     types.StatusResponse
	queue      types.QueueResponse
	library    types.LibraryResponse
	ready      bool
	enqueueErr error
	hub        *bridge.Hub
	calls      []call
}

func newMock() *mockService { return &mockService{hub: bridge.NewHub(zerolog.Nop())} }

func (m *mockService) record(c call) (string, error) {
	m.calls = append(m.calls, c)
	if m.enqueueErr != nil {
		return "", m.enqueueErr
	}
	return fmt.Sprintf("job-%d", len(m.calls)), nil
}

func (m *mockService) EnqueueGame(_ context.Context, v catalog.Variant) (string, error) {
	return m.record(call{op: "game", variant: v})
}
func (m *mockService) EnqueueUpdate(_ context.Context, v catalog.Variant) (string, error) {
	return m.record(call{op: "update", variant: v})
}
func (m *mockService) EnqueueComponent(_ context.Context, kind catalog.Variant, name string) (string, error) {
	return m.record(call{op: "component", variant: kind, arg: name})
}
func (m *mockService) EnqueuePrefix(_ context.Context, path string, corefonts bool) (string, error) {
	return m.record(call{op: "prefix", arg: path, flag: corefonts})
}
func (m *mockService) Queue() types.QueueResponse          { return m.queue }
func (m *mockService) LibrarySets() types.LibraryResponse { return m.library }
func (m *mockService) Status() types.StatusResponse       { return m.status }
func (m *mockService) Ready() bool                        { return m.ready }
func (m *mockService) Subscribe(name string) (*bridge.Subscription, error) {
	return m.hub.Subscribe(name)
}

func postJob(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEnqueueGameAccepted(t *testing.T) {
	svc := newMock()
	w := postJob(t, NewMux(svc), `{"kind":"game","variant":"genshin"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.EnqueueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.JobID != "job-1" || body.Variant != "genshin" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(svc.calls) != 1 || svc.calls[0] != (call{op: "game", variant: catalog.Genshin}) {
		t.Fatalf("calls=%+v", svc.calls)
	}
}

func TestEnqueueDispatchesByKind(t *testing.T) {
	svc := newMock()
	h := NewMux(svc)
	bodies := []string{
		`{"kind":"update","variant":"honkai"}`,
		`{"kind":"component","variant":"wine","name":" wine-ge-8-26 "}`,
		`{"kind":"prefix","path":"/pfx","install_corefonts":true}`,
	}
	for _, b := range bodies {
		if w := postJob(t, h, b); w.Code != http.StatusAccepted {
			t.Fatalf("%s: status=%d", b, w.Code)
		}
	}
	want := []call{
		{op: "update", variant: catalog.Honkai},
		{op: "component", variant: catalog.Wine, arg: "wine-ge-8-26"},
		{op: "prefix", arg: "/pfx", flag: true},
	}
	if len(svc.calls) != len(want) {
		t.Fatalf("calls=%+v", svc.calls)
	}
	for i := range want {
		if svc.calls[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, svc.calls[i], want[i])
		}
	}
}

func TestEnqueueBadRequests(t *testing.T) {
	h := NewMux(newMock())
	cases := map[string]string{
		"bad json":        "not-json",
		"unknown kind":    `{"kind":"mod"}`,
		"missing variant": `{"kind":"game"}`,
		"component kind":  `{"kind":"component"}`,
	}
	for name, body := range cases {
		if w := postJob(t, h, body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestEnqueueErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("genshin: %w", launcher.ErrNotAvailable), http.StatusConflict},
		{fmt.Errorf("genshin: %w", launcher.ErrNotInstalled), http.StatusConflict},
		{&launcher.UnknownVariantError{Variant: "x"}, http.StatusNotFound},
		{&launcher.ConfigError{What: "wine", Err: fmt.Errorf("no version configured")}, http.StatusUnprocessableEntity},
		{tasks.ErrDriverStopped, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := newMock()
		svc.enqueueErr = tc.err
		w := postJob(t, NewMux(svc), `{"kind":"game","variant":"genshin"}`)
		if w.Code != tc.want {
			t.Fatalf("%v: status=%d want %d", tc.err, w.Code, tc.want)
		}
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body.Code != tc.want || body.Error != tc.err.Error() {
			t.Fatalf("unexpected error body: %+v", body)
		}
	}
}

func TestEnqueueUnsupportedMediaType(t *testing.T) {
	h := NewMux(newMock())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(`{"kind":"game","variant":"genshin"}`))
	req.Header.Set("Content-Type", "text/plain")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	h := NewMux(newMock())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(`{"kind":"game","variant":"genshin"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with mixed-case content-type, got %d", w.Code)
	}
}

func TestEnqueueBodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	h := NewMux(newMock())
	body := `{"kind":"prefix","path":"` + strings.Repeat("a", 128) + `"}`
	if w := postJob(t, h, body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestReadEndpoints(t *testing.T) {
	svc := newMock()
	svc.queue = types.QueueResponse{State: "running", Pending: []types.Job{{ID: "a", Variant: "zzz"}}, CompletedTotal: 2}
	svc.library = types.LibraryResponse{Installed: []string{"genshin"}, Queued: []string{"zzz"}, Available: []string{}}
	svc.status = types.StatusResponse{Queue: svc.queue, Library: svc.library, Notices: []string{"dxvk: no version configured"}}
	h := NewMux(svc)

	get := func(path string, out any) {
		t.Helper()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
			t.Fatalf("%s: content-type=%s", path, ct)
		}
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: json: %v", path, err)
		}
	}

	var q types.QueueResponse
	get("/queue", &q)
	if q.State != "running" || len(q.Pending) != 1 || q.CompletedTotal != 2 {
		t.Fatalf("queue=%+v", q)
	}
	var lib types.LibraryResponse
	get("/library", &lib)
	if len(lib.Installed) != 1 || lib.Queued[0] != "zzz" {
		t.Fatalf("library=%+v", lib)
	}
	var st types.StatusResponse
	get("/status", &st)
	if len(st.Notices) != 1 || st.Queue.State != "running" {
		t.Fatalf("status=%+v", st)
	}
}

func TestReadyz(t *testing.T) {
	svc := newMock()
	svc.ready = true
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(newMock()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "starting") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(newMock()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(newMock())
	req := httptest.NewRequest(http.MethodGet, "/library", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	h := NewMux(newMock())
	req := httptest.NewRequest(http.MethodGet, "/library", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}
