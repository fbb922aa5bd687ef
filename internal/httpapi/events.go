package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"launcherd/internal/launcher"
)

// eventsHandler streams driver events as server-sent events. Each frame is
//
//	event: <progress|completed|failed>
//	data: <types.Event as JSON>
//
// The stream opens with a ": subscribed" comment once the subscription is in
// place and carries a keep-alive comment while idle.
func eventsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		name := "sse"
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			name = "sse-" + rid
		}
		sub, err := svc.Subscribe(name)
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		defer sub.Close()
		eventStreams.Inc()
		defer eventStreams.Dec()

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, ": subscribed\n\n")
		flusher.Flush()

		tick := time.NewTicker(keepAlive)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case e, ok := <-sub.C():
				if !ok {
					// hub closed: the daemon is shutting down
					return
				}
				data, err := json.Marshal(launcher.WireEvent(e))
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
