package repository

import (
	"database/sql"
	"fmt"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/pkg/database"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, display_name, rating, wins, losses, draws, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Rating,
		&user.Wins,
		&user.Losses,
		&user.Draws,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user seeded with the default rating.
func (r *UserRepository) Create(username, email, passwordHash, displayName string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, display_name, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(query, username, email, passwordHash, displayName, models.DefaultRating))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByID returns one user, or nil when absent.
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByEmail returns one user, or nil when absent.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByUsername returns one user, or nil when absent.
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// TopByRating returns the highest-rated users for the leaderboard.
func (r *UserRepository) TopByRating(limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY rating DESC, username ASC LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateRating sets a user's rating and bumps their win/loss/draw counters.
// Timeout counts against losses; abandoned battles touch nothing.
func (r *UserRepository) UpdateRating(userID string, rating int, outcome models.Outcome) error {
	var column string
	switch outcome {
	case models.OutcomeWin:
		column = "wins"
	case models.OutcomeDraw:
		column = "draws"
	case models.OutcomeLoss, models.OutcomeTimeout:
		column = "losses"
	default:
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET rating = $1, %s = %s + 1, updated_at = NOW()
		WHERE id = $2
	`, column, column)

	if _, err := r.db.Exec(query, rating, userID); err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}

	return nil
}
