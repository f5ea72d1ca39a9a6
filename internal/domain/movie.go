package domain

import "time"

// UnknownMovieTitle is rendered in place of a movie that no longer exists.
const UnknownMovieTitle = "Unknown Movie"

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID            string
	Title         string
	Poster        string
	Description   string
	ReleaseDate   string
	Genre         string
	Ratings       []float64
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MovieSummary is the lightweight view used for watchlists and profiles.
// Poster is nil when the referenced movie could not be resolved.
type MovieSummary struct {
	ID            string
	Title         string
	Poster        *string
	Description   string
	ReleaseDate   string
	AverageRating float64
	Missing       bool
}

// MissingMovie builds the placeholder summary for a dangling movie reference.
func MissingMovie(id string) MovieSummary {
	return MovieSummary{ID: id, Title: UnknownMovieTitle, Missing: true}
}

// GenreGroup holds the movies sharing one genre, in storage order.
type GenreGroup struct {
	Genre  string
	Movies []Movie
}
