package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/service"
)

type movieResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Poster        string    `json:"poster"`
	Description   string    `json:"description"`
	ReleaseDate   string    `json:"releaseDate"`
	Genre         string    `json:"genre"`
	Ratings       []float64 `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type movieSummaryResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Poster        *string `json:"poster"`
	Description   string  `json:"description,omitempty"`
	ReleaseDate   string  `json:"releaseDate,omitempty"`
	AverageRating float64 `json:"averageRating"`
	Missing       bool    `json:"missing,omitempty"`
}

type movieCreatedResponse struct {
	Message string        `json:"message"`
	Movie   movieResponse `json:"movie"`
}

type moviesDeletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.services.Catalog.List(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list movies", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponses(movies))
}

func (s *Server) handleMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	groups, err := s.services.Catalog.ListByGenre(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "group movies", err)
		return
	}
	resp := make(map[string][]movieResponse, len(groups))
	for _, group := range groups {
		resp[group.Genre] = toMovieResponses(group.Movies)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.services.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, "get movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req service.MovieInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.services.Catalog.Create(r.Context(), mustIdentity(r), req)
	if err != nil {
		s.respondServiceError(w, r, "create movie", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", movie.ID))
	s.respondJSON(w, http.StatusCreated, movieCreatedResponse{
		Message: "Movie added successfully",
		Movie:   toMovieResponse(movie),
	})
}

func (s *Server) handleDeleteMovies(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.services.Catalog.DeleteAll(r.Context(), mustIdentity(r))
	if err != nil {
		s.respondServiceError(w, r, "delete movies", err)
		return
	}
	s.respondJSON(w, http.StatusOK, moviesDeletedResponse{
		Message: "All movies deleted successfully",
		Deleted: deleted,
	})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	ratings := movie.Ratings
	if ratings == nil {
		ratings = []float64{}
	}
	return movieResponse{
		ID:            movie.ID,
		Title:         movie.Title,
		Poster:        movie.Poster,
		Description:   movie.Description,
		ReleaseDate:   movie.ReleaseDate,
		Genre:         movie.Genre,
		Ratings:       ratings,
		AverageRating: movie.AverageRating,
		CreatedAt:     movie.CreatedAt,
		UpdatedAt:     movie.UpdatedAt,
	}
}

func toMovieResponses(movies []domain.Movie) []movieResponse {
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	return items
}

func toSummaryResponses(summaries []domain.MovieSummary) []movieSummaryResponse {
	items := make([]movieSummaryResponse, 0, len(summaries))
	for _, m := range summaries {
		items = append(items, movieSummaryResponse{
			ID:            m.ID,
			Title:         m.Title,
			Poster:        m.Poster,
			Description:   m.Description,
			ReleaseDate:   m.ReleaseDate,
			AverageRating: m.AverageRating,
			Missing:       m.Missing,
		})
	}
	return items
}
