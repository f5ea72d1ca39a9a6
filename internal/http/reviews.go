package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/service"
)

// reviewRequest keeps movieId and rating raw so values of the wrong JSON type
// are reported in precondition order rather than as a decode failure.
type reviewRequest struct {
	MovieID json.RawMessage `json:"movieId"`
	Review  string          `json:"review"`
	Rating  json.RawMessage `json:"rating"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MovieID   string    `json:"movieId"`
	Review    string    `json:"review"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type movieReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	MovieID   string    `json:"movieId"`
	Review    string    `json:"review"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type userReviewResponse struct {
	ID         string    `json:"id"`
	MovieID    string    `json:"movieId"`
	MovieTitle string    `json:"movieTitle"`
	Poster     *string   `json:"poster"`
	Review     string    `json:"review"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

type reviewCreatedResponse struct {
	Message string         `json:"message"`
	Review  reviewResponse `json:"review"`
	Movie   movieResponse  `json:"movie"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	result, err := s.services.Reviews.Submit(r.Context(), mustIdentity(r), service.ReviewInput{
		MovieID: parseMovieID(req.MovieID),
		Text:    req.Review,
		Rating:  parseRating(req.Rating),
	})
	if err != nil {
		s.respondServiceError(w, r, "submit review", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, reviewCreatedResponse{
		Message: "Review added successfully.",
		Review:  toReviewResponse(result.Review),
		Movie:   toMovieResponse(result.Movie),
	})
}

func (s *Server) handleMovieReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Reviews.ListForMovie(r.Context(), chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondServiceError(w, r, "list movie reviews", err)
		return
	}
	resp := make([]movieReviewResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, movieReviewResponse{
			ID:        item.ID,
			UserID:    item.UserID,
			Username:  item.Username,
			MovieID:   item.MovieID,
			Review:    item.Text,
			Rating:    item.Rating,
			CreatedAt: item.CreatedAt,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Reviews.ListForUser(r.Context(), mustIdentity(r))
	if err != nil {
		s.respondServiceError(w, r, "list user reviews", err)
		return
	}
	resp := make([]userReviewResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, userReviewResponse{
			ID:         item.ID,
			MovieID:    item.MovieID,
			MovieTitle: item.MovieTitle,
			Poster:     item.Poster,
			Review:     item.Text,
			Rating:     item.Rating,
			CreatedAt:  item.CreatedAt,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// parseMovieID returns the id when raw is a JSON string and "" otherwise.
func parseMovieID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// parseRating returns nil unless raw is a JSON number.
func parseRating(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var value *float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		MovieID:   review.MovieID,
		Review:    review.Text,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}
}
