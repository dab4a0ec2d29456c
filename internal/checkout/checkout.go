package checkout

import (
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
)

// Checkout records one loan. A book has at most one row in status
// checked_out at any time; rows are never deleted, a return flips the status
// and stamps return_date.
type Checkout struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	BookID     int64      `json:"book_id" gorm:"column:book_id;not null;index"`
	UserID     int64      `json:"user_id" gorm:"column:user_id;not null;index"`
	DueDate    time.Time  `json:"due_date" gorm:"column:due_date;not null"`
	ReturnDate *time.Time `json:"return_date,omitempty" gorm:"column:return_date"`
	Status     string     `json:"status" gorm:"not null;default:checked_out"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Checkout) TableName() string {
	return "checkouts"
}

const (
	StatusCheckedOut = "checked_out"
	StatusReturned   = "returned"
)

// ActiveCheckout is a row of the active-loans listing, joined with book and
// user display fields.
type ActiveCheckout struct {
	ID        int64     `json:"id"`
	BookCode  string    `json:"book_code"`
	BookTitle string    `json:"book_title"`
	UserCode  string    `json:"user_code"`
	UserName  string    `json:"user_name"`
	DueDate   time.Time `json:"due_date"`
}

// Domain errors
var (
	ErrBookNotAvailable = internal.NewConflictError("book is not available", internal.ErrCodeBookNotAvailable)
	ErrBookNotOnLoan    = internal.NewConflictError("book is not checked out", internal.ErrCodeBookNotOnLoan)

	// ErrActiveCheckoutMissing signals a data integrity problem: the book row
	// says checked_out but no active checkout exists.
	ErrActiveCheckoutMissing = internal.NewNotFoundError("no active checkout found for book", internal.ErrCodeCheckoutNotFound)
)
