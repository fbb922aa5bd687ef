package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"launcherd/pkg/types"
)

// client talks to a running daemon.
var client = &http.Client{Timeout: 30 * time.Second}

// streamClient has no timeout: /events stays open.
var streamClient = &http.Client{}

func apiURL(cfg *Config, path string) string {
	return strings.TrimRight(cfg.Server, "/") + path
}

// apiError turns an error response into a Go error.
func apiError(resp *http.Response) error {
	var e types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		return fmt.Errorf("%s: %s", resp.Request.URL.Path, resp.Status)
	}
	return fmt.Errorf("%s (%d)", e.Error, e.Code)
}

func getJSON(ctx context.Context, cfg *Config, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL(cfg, path), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func enqueue(ctx context.Context, cfg *Config, in types.EnqueueRequest, w io.Writer) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL(cfg, "/jobs"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return apiError(resp)
	}
	var out types.EnqueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "queued %s (job %s)\n", out.Variant, out.JobID)
	return err
}

func showQueue(ctx context.Context, cfg *Config, w io.Writer) error {
	var q types.QueueResponse
	if err := getJSON(ctx, cfg, "/queue", &q); err != nil {
		return err
	}
	fmt.Fprintf(w, "state: %s  completed: %d  failed: %d\n", q.State, q.CompletedTotal, q.FailedTotal)
	if a := q.Active; a != nil {
		status := a.Status
		if status == "" {
			status = "starting"
		}
		fmt.Fprintf(w, "active: %s %s [%s] %5.1f%%\n", a.Job.ID, a.Job.Title, status, a.Ratio*100)
	}
	for i, p := range q.Pending {
		fmt.Fprintf(w, "%3d. %s %s (%s)\n", i+1, p.ID, p.Title, p.Kind)
	}
	return nil
}

func showLibrary(ctx context.Context, cfg *Config, w io.Writer) error {
	var lib types.LibraryResponse
	if err := getJSON(ctx, cfg, "/library", &lib); err != nil {
		return err
	}
	fmt.Fprintf(w, "installed: %s\n", strings.Join(lib.Installed, ", "))
	fmt.Fprintf(w, "queued:    %s\n", strings.Join(lib.Queued, ", "))
	fmt.Fprintf(w, "available: %s\n", strings.Join(lib.Available, ", "))
	return nil
}

// watch prints /events until ctx is done or the daemon closes the stream.
func watch(ctx context.Context, cfg *Config, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL(cfg, "/events"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var e types.Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue
		}
		fmt.Fprintln(w, formatEvent(e))
	}
	if ctx.Err() != nil {
		return nil
	}
	return sc.Err()
}

func formatEvent(e types.Event) string {
	switch e.Type {
	case "progress":
		return fmt.Sprintf("%s %s %s %5.1f%% (%d/%d)", e.JobID, e.Variant, e.Status, e.Ratio*100, e.Current, e.Total)
	case "failed":
		return fmt.Sprintf("%s %s failed: %s", e.JobID, e.Variant, e.Error)
	default:
		return fmt.Sprintf("%s %s %s", e.JobID, e.Variant, e.Type)
	}
}
