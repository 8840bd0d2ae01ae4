package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/usecase"
	"github.com/fuelrats/ratboard/pkg/utils/errutil"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
)

// Server is the read-only board tracker: a JSON snapshot endpoint plus a
// websocket feed of board events.
type Server struct {
	router *chi.Mux
	board  *usecase.Board
	hub    *Hub
}

func New(board *usecase.Board) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		board:  board,
		hub:    NewHub(),
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK")) //nolint:errcheck
	})
	r.Get("/api/board", s.boardHandler)
	r.Get("/api/archive/{archiveID}", s.archiveHandler)
	r.Get("/ws", s.hub.serveWS)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub exposes the websocket hub so board events can be wired into it
func (s *Server) Hub() *Hub {
	return s.hub
}

// caseView is the wire shape of a case for both the snapshot endpoint and
// the websocket feed.
type caseView struct {
	ID           int       `json:"id"`
	Reporter     string    `json:"reporter"`
	System       string    `json:"system,omitempty"`
	Platform     string    `json:"platform,omitempty"`
	Unidentified bool      `json:"unidentified"`
	Status       string    `json:"status"`
	Responders   []string  `json:"responders,omitempty"`
	Quotes       int       `json:"quotes"`
	CloseReason  string    `json:"close_reason,omitempty"`
	ArchiveID    string    `json:"archive_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newCaseView(c *model.Case) *caseView {
	if c == nil {
		return nil
	}
	return &caseView{
		ID:           c.ID,
		Reporter:     c.Reporter,
		System:       c.System,
		Platform:     string(c.Platform),
		Unidentified: c.Unidentified,
		Status:       string(c.Status.Normalize()),
		Responders:   c.Responders,
		Quotes:       len(c.Quotes),
		CloseReason:  string(c.CloseReason),
		ArchiveID:    c.ArchiveID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s *Server) boardHandler(w http.ResponseWriter, r *http.Request) {
	open := s.board.ListOpen()
	views := make([]*caseView, len(open))
	for i, c := range open {
		views[i] = newCaseView(c)
	}

	data, err := json.Marshal(map[string]any{"cases": views})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal board snapshot"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // header already committed
}

func (s *Server) archiveHandler(w http.ResponseWriter, r *http.Request) {
	archiveID := chi.URLParam(r, "archiveID")

	c, err := s.board.GetArchived(r.Context(), archiveID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrCaseNotFound) {
			status = http.StatusNotFound
		}
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	data, err := json.Marshal(newCaseView(c))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal archived case"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
