package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// StatusError reports a non-200 answer from the archive server.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.Code)
}

// Download fetches url into w. The counter is reset to the response length, or
// to sizeHint when the server does not send one.
func Download(ctx context.Context, client *http.Client, url string, w io.Writer, sizeHint uint64, c *Counter) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	total := sizeHint
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength)
	}
	c.Reset(total)
	if _, err := io.Copy(countingWriter{w: w, c: c}, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	c.SetTotal(c.Current())
	return nil
}
