package checkout

import (
	"log/slog"
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
	"github.com/shelfpoint/shelfpoint/internal/book"
	"github.com/shelfpoint/shelfpoint/internal/user"
)

// Repository defines transactional data access for checkouts. Transact runs
// fn against a repository bound to a single transaction; every write inside
// commits or rolls back as one unit.
type Repository interface {
	Transact(fn func(Repository) error) error

	BookByCode(code string) (*book.Book, error)
	UserByCode(code string) (*user.User, error)

	// ClaimBook flips the book from available to checked_out and reports
	// whether the row actually changed. A false return means another request
	// already holds the book, however close the race.
	ClaimBook(bookID int64) (bool, error)

	// ReleaseBook flips the book from checked_out back to available,
	// reporting whether the row changed.
	ReleaseBook(bookID int64) (bool, error)

	Create(c *Checkout) error
	ActiveByBookID(bookID int64) (*Checkout, error)
	MarkReturned(id int64, returnedAt time.Time) error
	ListActive() ([]*ActiveCheckout, error)
}

// Service enforces the loan invariants: a book's status and its active
// checkout row always agree, and both writes of a transition land atomically.
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

// Checkout lends a book to a user. The book must exist and be available, the
// user must exist. The checkout insert and book status flip happen in one
// transaction; the status flip is a compare-and-set, so of two racing
// requests exactly one wins and the other observes a conflict.
func (s *Service) Checkout(dto CheckoutDTO) (*Receipt, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("checkout validation failed", "error", err)
		return nil, err
	}

	dueDays := dto.DueDays
	if dueDays == 0 {
		dueDays = internal.DefaultDueDays
	}

	var receipt *Receipt
	err := s.repo.Transact(func(tx Repository) error {
		b, err := tx.BookByCode(dto.BookCode)
		if err != nil {
			return err
		}

		u, err := tx.UserByCode(dto.UserCode)
		if err != nil {
			return err
		}

		claimed, err := tx.ClaimBook(b.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrBookNotAvailable
		}

		now := time.Now().UTC()
		c := &Checkout{
			BookID:    b.ID,
			UserID:    u.ID,
			DueDate:   now.AddDate(0, 0, dueDays),
			Status:    StatusCheckedOut,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(c); err != nil {
			return err
		}

		receipt = &Receipt{
			ID:        c.ID,
			BookTitle: b.Title,
			UserName:  u.Name,
			DueDate:   c.DueDate,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("checkout failed", "book_code", dto.BookCode, "user_code", dto.UserCode, "error", err)
		return nil, err
	}

	s.logger.Info("checkout created",
		"checkout_id", receipt.ID,
		"book_code", dto.BookCode,
		"user_code", dto.UserCode,
		"due_date", receipt.DueDate.Format("2006-01-02"))

	return receipt, nil
}

// Return closes the active loan for a book. The borrower is not verified
// here; the station checks the badge against the recorded borrower before
// calling.
func (s *Service) Return(dto ReturnDTO) (*ReturnReceipt, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("return validation failed", "error", err)
		return nil, err
	}

	var receipt *ReturnReceipt
	err := s.repo.Transact(func(tx Repository) error {
		b, err := tx.BookByCode(dto.BookCode)
		if err != nil {
			return err
		}
		if b.Status != book.StatusCheckedOut {
			return ErrBookNotOnLoan
		}

		active, err := tx.ActiveByBookID(b.ID)
		if err != nil {
			return err
		}

		if err := tx.MarkReturned(active.ID, time.Now().UTC()); err != nil {
			return err
		}

		released, err := tx.ReleaseBook(b.ID)
		if err != nil {
			return err
		}
		if !released {
			return internal.NewInternalError("book status changed during return", nil)
		}

		receipt = &ReturnReceipt{BookTitle: b.Title}
		return nil
	})
	if err != nil {
		s.logger.Warn("return failed", "book_code", dto.BookCode, "error", err)
		return nil, err
	}

	s.logger.Info("book returned", "book_code", dto.BookCode)
	return receipt, nil
}

// ListActive returns all open loans, soonest due first so urgent items
// surface at the top of the station's list.
func (s *Service) ListActive() ([]*ActiveCheckout, error) {
	active, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list active checkouts", "error", err)
		return nil, err
	}
	return active, nil
}
