package scanner

import (
	"context"
	"time"
)

// BookInfo is the controller's view of a book, resolved between the two scan
// steps to decide whether the cycle is a checkout or a return.
type BookInfo struct {
	Code             string
	Title            string
	Status           string
	CheckedOutTo     string
	CheckedOutToCode string
}

const (
	BookStatusAvailable  = "available"
	BookStatusCheckedOut = "checked_out"
)

type CheckoutReceipt struct {
	ID        int64
	BookTitle string
	UserName  string
	DueDate   time.Time
}

type ReturnReceipt struct {
	BookTitle string
}

// RecordService is the server as the station sees it. Implementations must
// honor context deadlines; a timed-out call is treated like any other
// failure.
type RecordService interface {
	BookByCode(ctx context.Context, code string) (*BookInfo, error)
	Checkout(ctx context.Context, bookCode, userCode string, dueDays int) (*CheckoutReceipt, error)
	Return(ctx context.Context, bookCode string) (*ReturnReceipt, error)
}

// StatusSink receives user-facing workflow updates. The terminal station
// prints them; a browser front end would render them.
type StatusSink interface {
	StateChanged(s State)
	Prompt(msg string)
	Success(msg string)
	Failure(msg string)
}
