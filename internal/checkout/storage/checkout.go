package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shelfpoint/shelfpoint/internal/book"
	"github.com/shelfpoint/shelfpoint/internal/checkout"
	"github.com/shelfpoint/shelfpoint/internal/user"
)

// CheckoutRepository implements checkout.Repository using GORM. Transact
// binds a fresh repository to the transaction handle, so every method called
// inside the closure shares one transaction.
type CheckoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) checkout.Repository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Transact(fn func(checkout.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CheckoutRepository{db: tx})
	})
}

func (r *CheckoutRepository) BookByCode(code string) (*book.Book, error) {
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

func (r *CheckoutRepository) UserByCode(code string) (*user.User, error) {
	var u user.User
	err := r.db.Where("code = ?", code).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ClaimBook is the compare-and-set half of the checkout transition: the
// update only matches while the book is still available, so the affected row
// count decides the race.
func (r *CheckoutRepository) ClaimBook(bookID int64) (bool, error) {
	res := r.db.Model(&book.Book{}).
		Where("id = ? AND status = ?", bookID, book.StatusAvailable).
		Updates(map[string]interface{}{
			"status":     book.StatusCheckedOut,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CheckoutRepository) ReleaseBook(bookID int64) (bool, error) {
	res := r.db.Model(&book.Book{}).
		Where("id = ? AND status = ?", bookID, book.StatusCheckedOut).
		Updates(map[string]interface{}{
			"status":     book.StatusAvailable,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CheckoutRepository) Create(c *checkout.Checkout) error {
	return r.db.Create(c).Error
}

func (r *CheckoutRepository) ActiveByBookID(bookID int64) (*checkout.Checkout, error) {
	var c checkout.Checkout
	err := r.db.Where("book_id = ? AND status = ?", bookID, checkout.StatusCheckedOut).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkout.ErrActiveCheckoutMissing
		}
		return nil, err
	}
	return &c, nil
}

func (r *CheckoutRepository) MarkReturned(id int64, returnedAt time.Time) error {
	return r.db.Model(&checkout.Checkout{}).
		Where("id = ? AND status = ?", id, checkout.StatusCheckedOut).
		Updates(map[string]interface{}{
			"status":      checkout.StatusReturned,
			"return_date": returnedAt,
			"updated_at":  returnedAt,
		}).Error
}

func (r *CheckoutRepository) ListActive() ([]*checkout.ActiveCheckout, error) {
	var rows []*checkout.ActiveCheckout
	err := r.db.Table("checkouts").
		Select("checkouts.id, books.code AS book_code, books.title AS book_title, users.code AS user_code, users.name AS user_name, checkouts.due_date").
		Joins("JOIN books ON books.id = checkouts.book_id").
		Joins("JOIN users ON users.id = checkouts.user_id").
		Where("checkouts.status = ?", checkout.StatusCheckedOut).
		Order("checkouts.due_date ASC").
		Scan(&rows).Error
	return rows, err
}
