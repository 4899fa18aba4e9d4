// Package server exposes generation to a design tool's UI over HTTP and
// WebSocket. The UI sends a Trigger; when it targets a frame the server
// compiles it and answers with exactly one Message holding the complete
// component. Other targets and unselectable selections get no reply.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// TargetFrame is the only trigger target that starts a generation.
const TargetFrame = "frame"

// Message types.
const (
	TypeCode  = "code"
	TypeError = "error"
)

// Trigger is an inbound request from the UI.
type Trigger struct {
	Target string `json:"target"`
	URL    string `json:"url,omitempty"`
	NodeID string `json:"nodeId,omitempty"`
}

// Message is the single outbound reply to a frame trigger.
type Message struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// Output is what a Generator produced. Skipped means the selection could
// not be compiled and nothing must be sent.
type Output struct {
	Title   string
	Code    string
	Skipped bool
}

// Generator compiles the frame a trigger points at.
type Generator interface {
	Generate(ctx context.Context, t Trigger) (Output, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, t Trigger) (Output, error)

func (f GeneratorFunc) Generate(ctx context.Context, t Trigger) (Output, error) {
	return f(ctx, t)
}

const writeWait = 10 * time.Second

// Server routes triggers to a Generator.
type Server struct {
	gen      Generator
	logger   *zap.SugaredLogger
	registry *prometheus.Registry
	metrics  *metrics
	router   chi.Router
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a Server serving gen.
func New(gen Generator, opts ...Option) *Server {
	s := &Server{
		gen:      gen,
		logger:   zap.NewNop().Sugar(),
		registry: prometheus.NewRegistry(),
		upgrader: websocket.Upgrader{
			// Plugin iframes report a "null" origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/generate", s.handleGenerate)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	}
}

// generate runs one trigger and returns the reply to send, or nil when
// nothing must be sent.
func (s *Server) generate(ctx context.Context, t Trigger) (*Message, error) {
	if t.Target != TargetFrame {
		s.metrics.generations.WithLabelValues("ignored").Inc()
		return nil, nil
	}

	start := time.Now()
	out, err := s.gen.Generate(ctx, t)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.generations.WithLabelValues("error").Inc()
		s.logger.Errorw("Generation failed", "url", t.URL, "node", t.NodeID, "error", err)
		return nil, err
	}
	if out.Skipped {
		s.metrics.generations.WithLabelValues("skipped").Inc()
		s.logger.Warnw("Selection is not a single frame, nothing generated", "url", t.URL, "node", t.NodeID)
		return nil, nil
	}

	s.metrics.generations.WithLabelValues("code").Inc()
	msg := &Message{
		ID:    uuid.NewString(),
		Type:  TypeCode,
		Title: out.Title,
		Code:  out.Code,
	}
	s.logger.Infow("Generated component", "id", msg.ID, "title", msg.Title, "bytes", len(msg.Code))
	return msg, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var t Trigger
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warnw("Generate: invalid request body", "error", err)
		return
	}

	msg, err := s.generate(r.Context(), t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		s.logger.Errorw("Generate: response encode failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Failed to upgrade WebSocket", "error", err)
		return
	}
	defer conn.Close()

	s.metrics.connections.Inc()
	defer s.metrics.connections.Dec()
	s.logger.Infow("WebSocket connected", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warnw("WebSocket read failed", "error", err)
			}
			return
		}

		var t Trigger
		if err := json.Unmarshal(data, &t); err != nil {
			s.logger.Warnw("WebSocket: ignoring malformed trigger", "error", err)
			continue
		}

		msg, err := s.generate(r.Context(), t)
		if err != nil {
			msg = &Message{ID: uuid.NewString(), Type: TypeError, Error: err.Error()}
		}
		if msg == nil {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Warnw("WebSocket write failed", "error", err)
			return
		}
	}
}
