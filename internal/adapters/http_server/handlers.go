// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"zoover/internal/domain"
)

// Queries is the read side the handlers need.
type Queries interface {
	ListAccommodations(ctx context.Context) ([]domain.AccommodationItem, error)
	GetAccommodation(ctx context.Context, id string) (domain.AccommodationView, error)
	ListReviews(ctx context.Context, accommodationID string) ([]domain.ReviewItem, error)
	GetReview(ctx context.Context, accommodationID, reviewID string) (domain.ReviewView, error)
}

type Handlers struct{ Q Queries }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/", h.root)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/accommodations", func(r chi.Router) {
		r.Get("/", h.listAccommodations)
		r.Get("/{id}", h.getAccommodation)
		r.Get("/{id}/reviews", h.listReviews)
		r.Get("/{id}/reviews/{reviewID}", h.getReview)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeErr maps domain errors onto problem documents.
func writeErr(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", notFound)
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("query failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "Zoover API is running"})
}

func (h *Handlers) listAccommodations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListAccommodations(r.Context())
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) getAccommodation(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetAccommodation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, "Accommodation not found")
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetReview(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "reviewID"))
	if err != nil {
		writeErr(w, r, err, "Review not found")
		return
	}
	writeJSON(w, out)
}
