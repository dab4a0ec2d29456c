package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shelfpoint/shelfpoint/internal/scanlog"
)

// ScanLogRepository implements scanlog.Repository with plain SQL over sqlx.
// The log is a flat append-only table; nothing here needs an ORM.
type ScanLogRepository struct {
	db *sqlx.DB
}

func NewScanLogRepository(db *sqlx.DB) scanlog.Repository {
	return &ScanLogRepository{db: db}
}

func (r *ScanLogRepository) Insert(barcode, notes string) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		r.db.Rebind("INSERT INTO barcodes (barcode, notes, scanned_at) VALUES (?, ?, ?) RETURNING id"),
		barcode, notes, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, scanlog.ErrBarcodeExists
		}
		return 0, err
	}
	return id, nil
}

func (r *ScanLogRepository) GetByBarcode(barcode string) (*scanlog.ScanRecord, error) {
	var rec scanlog.ScanRecord
	err := r.db.Get(&rec, r.db.Rebind("SELECT id, barcode, notes, scanned_at FROM barcodes WHERE barcode = ?"), barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ScanLogRepository) List() ([]*scanlog.ScanRecord, error) {
	records := []*scanlog.ScanRecord{}
	err := r.db.Select(&records, "SELECT id, barcode, notes, scanned_at FROM barcodes ORDER BY scanned_at DESC, id DESC")
	return records, err
}

func (r *ScanLogRepository) Delete(id int64) (int64, error) {
	res, err := r.db.Exec(r.db.Rebind("DELETE FROM barcodes WHERE id = ?"), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isUniqueViolation matches both sqlite ("UNIQUE constraint failed") and
// postgres (error code 23505) duplicate-key errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "23505")
}
