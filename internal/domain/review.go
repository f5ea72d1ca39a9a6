package domain

import "time"

// UnknownUsername is rendered for a review whose author cannot be resolved.
const UnknownUsername = "unknown"

// Review is a single user's written review and rating of a movie.
type Review struct {
	ID        string
	UserID    string
	MovieID   string
	Text      string
	Rating    float64
	CreatedAt time.Time
}

// MovieReview is a review joined with its author's username.
type MovieReview struct {
	Review
	Username string
}

// ReviewSummary is a review joined with its movie's title and poster.
type ReviewSummary struct {
	ID         string
	MovieID    string
	MovieTitle string
	Poster     *string
	Text       string
	Rating     float64
	CreatedAt  time.Time
}
