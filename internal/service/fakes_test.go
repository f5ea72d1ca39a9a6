package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/repository"
)

// memStore is a single in-memory backend implementing every store interface.
// Every method holds mu for its whole duration, so each call is atomic.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	order   []string
	movies  map[string]*domain.Movie
	mOrder  []string
	reviews []domain.Review
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*domain.User),
		movies: make(map[string]*domain.Movie),
	}
}

type memUsers struct{ *memStore }
type memMovies struct{ *memStore }
type memReviews struct{ *memStore }
type memWatchlist struct{ *memStore }

func (s memUsers) Create(_ context.Context, p repository.UserCreateParams) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == p.Email || u.Username == p.Username {
			return domain.User{}, repository.ErrDuplicateKey
		}
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		Watchlist:    []string{},
		CreatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return *u, nil
}

func (s memUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	out := *u
	out.Watchlist = append([]string{}, u.Watchlist...)
	return out, nil
}

func (s memUsers) GetByLogin(_ context.Context, login string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var byName *domain.User
	for _, id := range s.order {
		u := s.users[id]
		if u.Email == login {
			return *u, nil
		}
		if u.Username == login && byName == nil {
			byName = u
		}
	}
	if byName == nil {
		return domain.User{}, repository.ErrNotFound
	}
	return *byName, nil
}

func (s memMovies) Create(_ context.Context, p repository.MovieCreateParams) (domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ratings := append([]float64{}, p.Ratings...)
	m := &domain.Movie{
		ID:            uuid.NewString(),
		Title:         p.Title,
		Poster:        p.Poster,
		Description:   p.Description,
		ReleaseDate:   p.ReleaseDate,
		Genre:         p.Genre,
		Ratings:       ratings,
		AverageRating: averageOf(ratings),
	}
	s.movies[m.ID] = m
	s.mOrder = append(s.mOrder, m.ID)
	return *m, nil
}

func (s memMovies) GetByID(_ context.Context, id string) (domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return *m, nil
}

func (s memMovies) List(_ context.Context) ([]domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.Movie, 0, len(s.mOrder))
	for _, id := range s.mOrder {
		items = append(items, *s.movies[id])
	}
	return items, nil
}

func (s memMovies) ListByGenre(ctx context.Context) ([]domain.GenreGroup, error) {
	movies, _ := s.List(ctx)
	var groups []domain.GenreGroup
	index := map[string]int{}
	for _, m := range movies {
		i, ok := index[m.Genre]
		if !ok {
			i = len(groups)
			index[m.Genre] = i
			groups = append(groups, domain.GenreGroup{Genre: m.Genre})
		}
		groups[i].Movies = append(groups[i].Movies, m)
	}
	return groups, nil
}

func (s memMovies) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.movies))
	s.movies = make(map[string]*domain.Movie)
	s.mOrder = nil
	return n, nil
}

func (s memMovies) Summaries(_ context.Context, ids []string) ([]domain.MovieSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.MovieSummary, 0, len(ids))
	for _, id := range ids {
		m, ok := s.movies[id]
		if !ok {
			items = append(items, domain.MissingMovie(id))
			continue
		}
		poster := m.Poster
		items = append(items, domain.MovieSummary{
			ID:            m.ID,
			Title:         m.Title,
			Poster:        &poster,
			Description:   m.Description,
			ReleaseDate:   m.ReleaseDate,
			AverageRating: m.AverageRating,
		})
	}
	return items, nil
}

func (s memReviews) Submit(_ context.Context, p repository.ReviewCreateParams) (domain.Review, domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[p.MovieID]
	if !ok {
		return domain.Review{}, domain.Movie{}, repository.ErrNotFound
	}
	m.Ratings = append(m.Ratings, p.Rating)
	m.AverageRating = averageOf(m.Ratings)
	r := domain.Review{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		MovieID:   p.MovieID,
		Text:      p.Text,
		Rating:    p.Rating,
		CreatedAt: time.Now(),
	}
	s.reviews = append(s.reviews, r)
	out := *m
	out.Ratings = append([]float64{}, m.Ratings...)
	return r, out, nil
}

func (s memReviews) ListByMovie(_ context.Context, movieID string) ([]domain.MovieReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.MovieReview, 0)
	for _, r := range s.reviews {
		if r.MovieID != movieID {
			continue
		}
		name := domain.UnknownUsername
		if u, ok := s.users[r.UserID]; ok {
			name = u.Username
		}
		items = append(items, domain.MovieReview{Review: r, Username: name})
	}
	return items, nil
}

func (s memReviews) ListByUser(_ context.Context, userID string) ([]domain.ReviewSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.ReviewSummary, 0)
	for _, r := range s.reviews {
		if r.UserID != userID {
			continue
		}
		item := domain.ReviewSummary{
			ID:         r.ID,
			MovieID:    r.MovieID,
			MovieTitle: domain.UnknownMovieTitle,
			Text:       r.Text,
			Rating:     r.Rating,
			CreatedAt:  r.CreatedAt,
		}
		if m, ok := s.movies[r.MovieID]; ok {
			poster := m.Poster
			item.MovieTitle = m.Title
			item.Poster = &poster
		}
		items = append(items, item)
	}
	return items, nil
}

func (s memWatchlist) Add(_ context.Context, userID, movieID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, id := range u.Watchlist {
		if id == movieID {
			return nil, repository.ErrAlreadyPresent
		}
	}
	u.Watchlist = append(u.Watchlist, movieID)
	return append([]string{}, u.Watchlist...), nil
}

func (s memWatchlist) Remove(_ context.Context, userID, movieID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := make([]string, 0, len(u.Watchlist))
	for _, id := range u.Watchlist {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	u.Watchlist = kept
	return append([]string{}, kept...), nil
}

// averageOf mirrors the movie_average SQL function.
func averageOf(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return math.Round(sum/float64(len(ratings))*10) / 10
}
