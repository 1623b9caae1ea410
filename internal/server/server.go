package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	IndexText = "PDF summarizer bot running."
	AckText   = "ok"

	maxUpdateBytes = 1 << 20
)

// UpdateHandler processes one update synchronously.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *models.Update)
}

type Server struct {
	handler UpdateHandler
	secret  string
	log     *slog.Logger
}

func New(handler UpdateHandler, secret string, log *slog.Logger) *Server {
	return &Server{
		handler: handler,
		secret:  secret,
		log:     log,
	}
}

// Router serves GET / and POST /webhook/{secret}.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.accessLog)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/webhook/{secret}", s.handleWebhook).Methods(http.MethodPost)

	return router
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, IndexText)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if subtle.ConstantTimeCompare([]byte(mux.Vars(r)["secret"]), []byte(s.secret)) != 1 {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err != nil {
		s.log.WarnContext(ctx, "Failed to read webhook body",
			"error", err,
			"requestID", requestID(ctx))
		writeText(w, http.StatusOK, AckText)

		return
	}

	var update models.Update
	if err = json.Unmarshal(body, &update); err != nil {
		s.log.WarnContext(ctx, "Failed to decode update",
			"error", err,
			"requestID", requestID(ctx),
			"bodyLen", len(body))
		writeText(w, http.StatusOK, AckText)

		return
	}

	// The pipeline outlives a dropped connection; Bot bounds it with its own timeouts.
	s.handler.HandleUpdate(context.WithoutCancel(ctx), &update)

	writeText(w, http.StatusOK, AckText)
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog logs the route template so the webhook secret stays out of logs.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		s.log.InfoContext(ctx, "Request is served",
			"requestID", id,
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"durationMs", time.Since(start).Milliseconds())
	})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
