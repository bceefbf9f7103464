// Package server exposes the widget to a page over HTTP and a WebSocket
// state stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// Widget is the part of the widget the server drives.
type Widget interface {
	State() adapter.State
	SelectCategory(ctx context.Context, c core.Category) error
	ClosePopup(ctx context.Context) error
	Click(ctx context.Context, id string) error
	SetZoom(ctx context.Context, zoom int) (int, error)
	Objects(ctx context.Context) ([]mapengine.Object, error)
	MarkersInfo(ctx context.Context) ([]adapter.MarkerSummary, error)
	Subscribe() <-chan adapter.State
	Unsubscribe(ch <-chan adapter.State)
}

// Server serves the widget routes.
type Server struct {
	widget   Widget
	logger   *slog.Logger
	upgrader ws.Upgrader
}

// New creates a server for w.
func New(w Widget, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		widget: w,
		logger: logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/objects", s.handleObjects)
	mux.HandleFunc("POST /api/category/{category}", s.handleSelectCategory)
	mux.HandleFunc("POST /api/popup/close", s.handleClosePopup)
	mux.HandleFunc("POST /api/objects/{id}/click", s.handleClick)
	mux.HandleFunc("POST /api/zoom/{zoom}", s.handleSetZoom)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	info, err := s.widget.MarkersInfo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	objs, err := s.widget.Objects(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objs)
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.widget.SelectCategory(r.Context(), core.Category(r.PathValue("category"))); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) handleClosePopup(w http.ResponseWriter, r *http.Request) {
	if err := s.widget.ClosePopup(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if err := s.widget.Click(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) handleSetZoom(w http.ResponseWriter, r *http.Request) {
	zoom, err := strconv.Atoi(r.PathValue("zoom"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "zoom must be an integer"})
		return
	}
	applied, err := s.widget.SetZoom(r.Context(), zoom)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"zoom": applied})
}

// statusFor maps widget errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, mapengine.ErrUnknownObject):
		return http.StatusNotFound
	case errors.Is(err, adapter.ErrLibraryNotReady):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
