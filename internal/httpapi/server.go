package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/engine"
	"inferd/internal/session"
	"inferd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error
	CancelModel(modelID string) error
	ResetModel(modelID string) error
	UnloadModel(modelID string) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.ListModels()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.GenerateRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		// Stream NDJSON increments via the session manager.
		w.Header().Set("Content-Type", "application/x-ndjson")
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		start := time.Now()
		writer := io.Writer(w)
		lvl := requestLogLevel(r)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(w, &loggingLineWriter{})
		}
		if lvl >= LevelInfo {
			if zlog != nil {
				zlog.Info().Str("model", req.Model).Str("req_id", middleware.GetReqID(r.Context())).Msg("generate start")
			} else {
				log.Printf("generate start model=%s", req.Model)
			}
		}
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if sec := generateTimeout; sec > 0 {
			var tcancel context.CancelFunc
			joinedCtx, tcancel = context.WithTimeout(joinedCtx, time.Duration(sec)*time.Second)
			defer tcancel()
		}
		err := svc.Generate(joinedCtx, req, writer, flush)
		status := http.StatusOK
		if err != nil {
			// If the client disconnected or we are shutting down, just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if session.IsBusyRejection(err) {
				// Admission rejected: surface backpressure to the client.
				status = http.StatusTooManyRequests
				IncrementBackpressure("busy")
			} else {
				status = statusForError(err)
			}
			writeJSONError(w, status, err.Error())
		}
		if lvl >= LevelInfo {
			if zlog != nil {
				zlog.Info().Str("model", req.Model).Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("generate end")
			} else {
				log.Printf("generate end model=%s status=%d dur=%s err=%v", req.Model, status, time.Since(start), err)
			}
		}
	})

	r.Post("/cancel", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.HandleRequest](w, r)
		if !ok {
			return
		}
		if err := svc.CancelModel(req.Model); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		// Cancellation is best-effort and asynchronous.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "cancelling"})
	})

	r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.HandleRequest](w, r)
		if !ok {
			return
		}
		if err := svc.ResetModel(req.Model); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/handles/{model}", func(w http.ResponseWriter, r *http.Request) {
		model := chi.URLParam(r, "model")
		if err := svc.UnloadModel(model); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and body size, then decodes the request
// body into T.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return req, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

// statusForError maps well-known session/engine errors to HTTP status codes.
// Busy rejections on control endpoints are conflicts; /generate special-cases
// them to 429 before falling through here.
func statusForError(err error) int {
	switch {
	case session.IsModelNotFound(err) || session.IsNotInitialized(err):
		return http.StatusNotFound
	case session.IsBusyRejection(err):
		return http.StatusConflict
	case engine.IsUnavailable(err) || engine.IsUnsupportedAccelerator(err):
		return http.StatusServiceUnavailable
	default:
		if he, ok := err.(HTTPError); ok {
			return he.StatusCode()
		}
		return http.StatusInternalServerError
	}
}
