package book

import (
	"log/slog"
)

// Repository defines the data access methods for books
type Repository interface {
	GetByCode(code string) (*Book, error)
	GetDetailByCode(code string) (*Detail, error)
	List() ([]*Book, error)
}

// Service handles book lookups for the scan workflow.
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

// GetByCode resolves a scanned book code. When the book is checked out the
// detail carries the borrower's name and badge code so the station can tell
// the operator who holds it.
func (s *Service) GetByCode(code string) (*Detail, error) {
	detail, err := s.repo.GetDetailByCode(code)
	if err != nil {
		s.logger.Warn("book lookup failed", "code", code, "error", err)
		return nil, err
	}
	return detail, nil
}

// List returns the whole collection.
func (s *Service) List() ([]*Book, error) {
	books, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, err
	}
	return books, nil
}
