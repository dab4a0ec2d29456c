package user

import (
	"log/slog"
)

// Repository defines the data access methods for users
type Repository interface {
	GetByCode(code string) (*User, error)
}

// Service handles badge lookups. Users are seeded out-of-band and read-only
// here.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByCode(code string) (*User, error) {
	u, err := s.repo.GetByCode(code)
	if err != nil {
		s.logger.Warn("user lookup failed", "code", code, "error", err)
		return nil, err
	}
	return u, nil
}
