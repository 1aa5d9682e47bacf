package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresStore reads and writes the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByUsername returns ok=false when no user has that username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (UserProfile, bool, error) {
	query :=
		`SELECT id, username, password_hash FROM users
		 WHERE username = $1`

	return s.findOne(ctx, query, username)
}

// FindByID returns ok=false when no user has that id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (UserProfile, bool, error) {
	query :=
		`SELECT id, username, password_hash FROM users
		 WHERE id = $1`

	return s.findOne(ctx, query, id)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg string) (UserProfile, bool, error) {
	var u UserProfile
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserProfile{}, false, nil
		}
		return UserProfile{}, false, fmt.Errorf("db error: %w", err)
	}
	return u, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, u UserProfile) error {
	query :=
		`INSERT INTO users (id, username, password_hash)
		 VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Ping checks that the users table is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
