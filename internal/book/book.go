package book

import (
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
)

// Book is a single physical item in the collection, identified to operators
// by the barcode printed on it.
type Book struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Author    string    `json:"author"`
	Status    string    `json:"status" gorm:"not null;default:available"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Book) TableName() string {
	return "books"
}

const (
	StatusAvailable  = "available"
	StatusCheckedOut = "checked_out"
)

func (b *Book) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// Detail is the lookup response: the book plus the borrower, when on loan.
// Borrower fields are derived from the active checkout and never stored on
// the book row itself.
type Detail struct {
	Book
	CheckedOutTo     string     `json:"checked_out_to,omitempty"`
	CheckedOutToCode string     `json:"checked_out_to_code,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
}

var ErrBookNotFound = internal.NewNotFoundError("book not found", internal.ErrCodeBookNotFound)
