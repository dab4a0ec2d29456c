package scanlog

import (
	"log/slog"
)

// Repository defines the data access methods for the scan log
type Repository interface {
	Insert(barcode, notes string) (int64, error)
	GetByBarcode(barcode string) (*ScanRecord, error)
	List() ([]*ScanRecord, error)
	Delete(id int64) (int64, error)
}

// Service handles the append-only scan log.
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

// Add logs a barcode. Duplicates conflict; the log doubles as a
// have-we-seen-this-item check.
func (s *Service) Add(dto AddScanDTO) (*ScanRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(dto.Barcode, dto.Notes)
	if err != nil {
		s.logger.Warn("scan insert failed", "barcode", dto.Barcode, "error", err)
		return nil, err
	}

	s.logger.Info("barcode logged", "id", id, "barcode", dto.Barcode)
	return &ScanRecord{ID: id, Barcode: dto.Barcode, Notes: dto.Notes}, nil
}

// Lookup reports whether a barcode was already logged, returning the record
// when it was.
func (s *Service) Lookup(barcode string) (*ScanRecord, error) {
	rec, err := s.repo.GetByBarcode(barcode)
	if err != nil {
		s.logger.Error("scan lookup failed", "barcode", barcode, "error", err)
		return nil, err
	}
	return rec, nil
}

// List returns all logged scans, most recent first.
func (s *Service) List() ([]*ScanRecord, error) {
	records, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list scans", "error", err)
		return nil, err
	}
	return records, nil
}

// Delete removes a logged scan. Deleting an id that does not exist is not an
// error; the caller sees zero rows changed.
func (s *Service) Delete(id int64) (int64, error) {
	changes, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("scan delete failed", "id", id, "error", err)
		return 0, err
	}
	s.logger.Info("scan deleted", "id", id, "changes", changes)
	return changes, nil
}
