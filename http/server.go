// Package http provides the review server and a client for it. The server
// exposes the review engine over a JSON API; the client implements
// vslint.ReviewService by delegating to a remote server, so matchers can run
// against either a local engine or a shared review service.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/leohentschker/vslint"
)

// ReviewPath is the route the review endpoint is mounted at.
const ReviewPath = "/api/v1/design-review"

// ShutdownTimeout is how long Close waits for in-flight reviews.
const ShutdownTimeout = 5 * time.Second

// Server serves design reviews over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	service vslint.ReviewService
	logger  *zap.Logger

	// Addr is the bind address, e.g. ":8080".
	Addr string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server that delegates reviews to service.
func NewServer(service vslint.ReviewService, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post(ReviewPath, s.handleDesignReview)
	s.router = r
	s.server = &http.Server{Handler: r}
	return s
}

// ServeHTTP satisfies http.Handler so the server can be driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open binds the listener and begins serving in a goroutine.
func (s *Server) Open() error {
	if s.Addr == "" {
		return fmt.Errorf("address required")
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	s.ln = ln
	s.logger.Info("review server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the bound listener.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

func (s *Server) handleDesignReview(w http.ResponseWriter, r *http.Request) {
	var req vslint.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", fmt.Sprintf("decode request body: %v", err))
		return
	}
	if err := validateRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	resp, err := s.service.Review(r.Context(), &req)
	if err != nil {
		s.logger.Error("review failed",
			zap.String("test", req.TestDetails.Name),
			zap.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, "review failed", err.Error())
		return
	}

	s.logger.Info("review completed",
		zap.String("test", req.TestDetails.Name),
		zap.Bool("pass", resp.Pass),
	)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func validateRequest(req *vslint.ReviewRequest) error {
	if req.Content == "" {
		return fmt.Errorf("content is required")
	}
	if req.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if len(req.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}
	if err := vslint.ValidateRules(req.Rules); err != nil {
		return err
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: kind, Message: message})
}
