package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type watchlistIDsResponse struct {
	Message   string   `json:"message"`
	Watchlist []string `json:"watchlist"`
}

type watchlistResponse struct {
	Watchlist []movieSummaryResponse `json:"watchlist"`
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	ids, err := s.services.Watchlist.Add(r.Context(), mustIdentity(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, "add to watchlist", err)
		return
	}
	s.respondJSON(w, http.StatusOK, watchlistIDsResponse{
		Message:   "Movie added to watchlist.",
		Watchlist: ids,
	})
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	ids, err := s.services.Watchlist.Remove(r.Context(), mustIdentity(r), chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondServiceError(w, r, "remove from watchlist", err)
		return
	}
	s.respondJSON(w, http.StatusOK, watchlistIDsResponse{
		Message:   "Movie removed from watchlist.",
		Watchlist: ids,
	})
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.services.Watchlist.List(r.Context(), mustIdentity(r))
	if err != nil {
		s.respondServiceError(w, r, "list watchlist", err)
		return
	}
	s.respondJSON(w, http.StatusOK, watchlistResponse{Watchlist: toSummaryResponses(summaries)})
}
