package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shelfpoint/shelfpoint/internal/book"
)

// BookRepository implements the book.Repository interface using GORM
type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.Repository {
	return &BookRepository{db: db}
}

func (r *BookRepository) GetByCode(code string) (*book.Book, error) {
	var b book.Book
	err := r.db.Where("code = ?", code).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// borrowerRow carries the join columns for an active checkout.
type borrowerRow struct {
	UserName string
	UserCode string
	DueDate  time.Time
}

// GetDetailByCode joins the active checkout and its user onto the book so a
// checked-out book reports who holds it.
func (r *BookRepository) GetDetailByCode(code string) (*book.Detail, error) {
	b, err := r.GetByCode(code)
	if err != nil {
		return nil, err
	}

	detail := &book.Detail{Book: *b}
	if b.Status != book.StatusCheckedOut {
		return detail, nil
	}

	var row borrowerRow
	err = r.db.Table("checkouts").
		Select("users.name AS user_name, users.code AS user_code, checkouts.due_date").
		Joins("JOIN users ON users.id = checkouts.user_id").
		Where("checkouts.book_id = ? AND checkouts.status = ?", b.ID, "checked_out").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	if row.UserCode != "" {
		detail.CheckedOutTo = row.UserName
		detail.CheckedOutToCode = row.UserCode
		due := row.DueDate
		detail.DueDate = &due
	}
	return detail, nil
}

func (r *BookRepository) List() ([]*book.Book, error) {
	var books []*book.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}
