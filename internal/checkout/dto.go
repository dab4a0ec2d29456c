package checkout

import (
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
)

// CheckoutDTO is the request payload for creating a checkout.
type CheckoutDTO struct {
	BookCode string `json:"book_code"`
	UserCode string `json:"user_code"`
	DueDays  int    `json:"due_days,omitempty"`
}

func (dto CheckoutDTO) Validate() error {
	if dto.BookCode == "" {
		return internal.NewValidationError("book_code is required", internal.ErrCodeMissingField)
	}
	if dto.UserCode == "" {
		return internal.NewValidationError("user_code is required", internal.ErrCodeMissingField)
	}
	if dto.DueDays < 0 {
		return internal.NewValidationError("due_days must not be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ReturnDTO is the request payload for returning a book.
type ReturnDTO struct {
	BookCode string `json:"book_code"`
}

func (dto ReturnDTO) Validate() error {
	if dto.BookCode == "" {
		return internal.NewValidationError("book_code is required", internal.ErrCodeMissingField)
	}
	return nil
}

// Receipt echoes what the operator needs to confirm a completed checkout.
type Receipt struct {
	ID        int64     `json:"id"`
	BookTitle string    `json:"book_title"`
	UserName  string    `json:"user_name"`
	DueDate   time.Time `json:"due_date"`
}

// ReturnReceipt confirms a completed return.
type ReturnReceipt struct {
	BookTitle string `json:"book_title"`
}
