package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"launcherd/internal/bridge"
	"launcherd/internal/catalog"
	"launcherd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	EnqueueGame(ctx context.Context, v catalog.Variant) (string, error)
	EnqueueUpdate(ctx context.Context, v catalog.Variant) (string, error)
	EnqueueComponent(ctx context.Context, kind catalog.Variant, name string) (string, error)
	EnqueuePrefix(ctx context.Context, path string, corefonts bool) (string, error)
	Queue() types.QueueResponse
	LibrarySets() types.LibraryResponse
	Status() types.StatusResponse
	Subscribe(name string) (*bridge.Subscription, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// event-stream is left out so SSE frames are never buffered by the compressor
	r.Use(middleware.Compress(5, "application/json", "text/plain"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/jobs", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.EnqueueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		v := catalog.Variant(strings.TrimSpace(req.Variant))
		var (
			id  string
			err error
		)
		switch req.Kind {
		case types.EnqueueGame, types.EnqueueUpdate:
			if v == "" {
				writeJSONError(w, http.StatusBadRequest, "variant is required")
				return
			}
			if req.Kind == types.EnqueueGame {
				id, err = svc.EnqueueGame(r.Context(), v)
			} else {
				id, err = svc.EnqueueUpdate(r.Context(), v)
			}
		case types.EnqueueComponent:
			if v == "" {
				writeJSONError(w, http.StatusBadRequest, "variant is required")
				return
			}
			id, err = svc.EnqueueComponent(r.Context(), v, strings.TrimSpace(req.Name))
		case types.EnqueuePrefix:
			v = catalog.Prefix
			id, err = svc.EnqueuePrefix(r.Context(), strings.TrimSpace(req.Path), req.InstallCorefonts)
		default:
			writeJSONError(w, http.StatusBadRequest, "kind must be one of game, update, component, prefix")
			return
		}
		if err != nil {
			status, reason := statusFor(err)
			IncrementRejected(reason)
			writeJSONError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, types.EnqueueResponse{JobID: id, Variant: string(v)})
	})

	r.Get("/queue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Queue())
	})

	r.Get("/library", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.LibrarySets())
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/events", eventsHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Warn().Err(err).Msg("encode response")
	}
}
