package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/internal/repository"
	"github.com/codeduel/codeduel-backend/pkg/logger"
)

// leaderboardTTL keeps leaderboard reads off the database between battles
// without letting standings go visibly stale.
const leaderboardTTL = 30 * time.Second

type UserService struct {
	userRepo *repository.UserRepository
	cache    *redis.Client // nil disables leaderboard caching
}

func NewUserService(userRepo *repository.UserRepository, cache *redis.Client) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
	}
}

// Register creates a new user with the default rating.
func (s *UserService) Register(username, email, password, displayName string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if displayName == "" {
		displayName = username
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	existing, err = s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(username, email, passwordHash, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email and password.
func (s *UserService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns one user.
func (s *UserService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// GetLeaderboard returns the top users by rating. Results are cached in Redis
// for a short window; cache failures fall through to the database.
func (s *UserService) GetLeaderboard(limit int) ([]*models.User, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(context.Background(), cacheKey).Bytes(); err == nil {
			var users []*models.User
			if err := json.Unmarshal(cached, &users); err == nil {
				return users, nil
			}
		}
	}

	users, err := s.userRepo.TopByRating(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(users); err == nil {
			if err := s.cache.Set(context.Background(), cacheKey, data, leaderboardTTL).Err(); err != nil {
				logger.Warn("Failed to cache leaderboard", "error", err)
			}
		}
	}

	return users, nil
}
