package scanlog

import (
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
)

// ScanRecord is one row in the append-only barcode log, the simplest
// workflow the station supports: scan an item, note it, move on.
type ScanRecord struct {
	ID        int64     `json:"id" db:"id"`
	Barcode   string    `json:"barcode" db:"barcode"`
	Notes     string    `json:"notes" db:"notes"`
	ScannedAt time.Time `json:"scanned_at" db:"scanned_at"`
}

// AddScanDTO is the request payload for logging a barcode.
type AddScanDTO struct {
	Barcode string `json:"barcode"`
	Notes   string `json:"notes,omitempty"`
}

func (dto AddScanDTO) Validate() error {
	if dto.Barcode == "" {
		return internal.NewValidationError("barcode is required", internal.ErrCodeMissingField)
	}
	return nil
}

var ErrBarcodeExists = internal.NewConflictError("barcode already exists", internal.ErrCodeBarcodeExists)
