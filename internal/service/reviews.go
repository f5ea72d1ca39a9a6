package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/metrics"
	"github.com/Clark-Hu/movierank/internal/repository"
	"github.com/Clark-Hu/movierank/internal/validation"
)

// ReviewInput is a review submission. Rating is nil when the client omitted it
// or sent a non-numeric value.
type ReviewInput struct {
	MovieID string   `json:"movieId"`
	Text    string   `json:"review" validate:"required"`
	Rating  *float64 `json:"rating" validate:"required,gt=0,lte=10"`
}

// SubmitResult is the stored review and the movie with its new aggregate.
type SubmitResult struct {
	Review domain.Review
	Movie  domain.Movie
}

// Reviews accepts review submissions and serves review listings.
type Reviews struct {
	reviews ReviewStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewReviews constructs the review service.
func NewReviews(reviews ReviewStore, deps Deps) *Reviews {
	return &Reviews{
		reviews: reviews,
		metrics: deps.Metrics,
		logger:  deps.Logger.With().Str("component", "reviews").Logger(),
	}
}

// Submit validates the submission and hands it to the store, which records
// the review and updates the movie aggregate as one unit. Checks run in a
// fixed order: identifier shape, then field presence, then movie existence.
func (s *Reviews) Submit(ctx context.Context, by domain.Identity, in ReviewInput) (SubmitResult, error) {
	if err := checkID(in.MovieID); err != nil {
		s.metrics.ReviewsFailed.WithLabelValues("invalid_id").Inc()
		return SubmitResult{}, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		s.metrics.ReviewsFailed.WithLabelValues("validation").Inc()
		return SubmitResult{}, invalid(err)
	}

	review, movie, err := s.reviews.Submit(ctx, repository.ReviewCreateParams{
		UserID:  by.ID,
		MovieID: in.MovieID,
		Text:    in.Text,
		Rating:  *in.Rating,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ReviewsFailed.WithLabelValues("movie_not_found").Inc()
		} else {
			s.metrics.ReviewsFailed.WithLabelValues("storage").Inc()
		}
		return SubmitResult{}, storeError("submit review", err)
	}

	s.metrics.ReviewsAccepted.Inc()
	s.logger.Debug().
		Str("movie_id", movie.ID).
		Str("user_id", by.ID).
		Int("ratings", len(movie.Ratings)).
		Float64("average", movie.AverageRating).
		Msg("review accepted")
	return SubmitResult{Review: review, Movie: movie}, nil
}

// ListForMovie returns a movie's reviews with author usernames.
func (s *Reviews) ListForMovie(ctx context.Context, movieID string) ([]domain.MovieReview, error) {
	if err := checkID(movieID); err != nil {
		return nil, err
	}
	items, err := s.reviews.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, storeError("list movie reviews", err)
	}
	return items, nil
}

// ListForUser returns the caller's reviews with movie title and poster.
func (s *Reviews) ListForUser(ctx context.Context, by domain.Identity) ([]domain.ReviewSummary, error) {
	items, err := s.reviews.ListByUser(ctx, by.ID)
	if err != nil {
		return nil, storeError("list user reviews", err)
	}
	return items, nil
}
