package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movierank/internal/domain"
)

// UsersRepository persists user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id::text,
    email,
    username,
    password_hash,
    role,
    watchlist::text[],
    created_at
`

// UserCreateParams carries an already normalized and hashed registration.
type UserCreateParams struct {
	Email        string
	Username     string
	PasswordHash string
	Role         string
}

// Create inserts a user. Uniqueness of email and username is enforced by the
// table constraints, so a concurrent duplicate surfaces as ErrDuplicateKey.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	role := params.Role
	if role == "" {
		role = domain.RoleUser
	}

	query := fmt.Sprintf(`
        INSERT INTO users (email, username, password_hash, role)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, params.Email, params.Username, params.PasswordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateKey
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1::uuid`, userColumns)
	return r.getOne(ctx, query, id)
}

// GetByLogin fetches a user whose email or username equals login. An email
// match wins over a username match.
func (r *UsersRepository) GetByLogin(ctx context.Context, login string) (domain.User, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM users
        WHERE email = $1 OR username = $1
        ORDER BY (email = $1) DESC
        LIMIT 1
    `, userColumns)
	return r.getOne(ctx, query, login)
}

func (r *UsersRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Watchlist,
		&user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if user.Watchlist == nil {
		user.Watchlist = []string{}
	}
	return user, nil
}
