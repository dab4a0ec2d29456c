package station

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
	"github.com/shelfpoint/shelfpoint/internal/scanner"
)

// Client talks to the shelfpoint server's REST API and implements
// scanner.RecordService for the scan station.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BookByCode(ctx context.Context, code string) (*scanner.BookInfo, error) {
	var out struct {
		Code             string `json:"code"`
		Title            string `json:"title"`
		Author           string `json:"author"`
		Status           string `json:"status"`
		CheckedOutTo     string `json:"checked_out_to,omitempty"`
		CheckedOutToCode string `json:"checked_out_to_code,omitempty"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &scanner.BookInfo{
		Code:             out.Code,
		Title:            out.Title,
		Status:           out.Status,
		CheckedOutTo:     out.CheckedOutTo,
		CheckedOutToCode: out.CheckedOutToCode,
	}, nil
}

func (c *Client) Checkout(ctx context.Context, bookCode, userCode string, dueDays int) (*scanner.CheckoutReceipt, error) {
	body := map[string]any{
		"book_code": bookCode,
		"user_code": userCode,
	}
	if dueDays > 0 {
		body["due_days"] = dueDays
	}
	var out struct {
		BookTitle string    `json:"book_title"`
		UserName  string    `json:"user_name"`
		DueDate   time.Time `json:"due_date"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/checkouts", body, &out); err != nil {
		return nil, err
	}
	return &scanner.CheckoutReceipt{
		BookTitle: out.BookTitle,
		UserName:  out.UserName,
		DueDate:   out.DueDate,
	}, nil
}

func (c *Client) Return(ctx context.Context, bookCode string) (*scanner.ReturnReceipt, error) {
	body := map[string]any{"book_code": bookCode}
	var out struct {
		BookTitle string `json:"book_title"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/checkouts/return", body, &out); err != nil {
		return nil, err
	}
	return &scanner.ReturnReceipt{BookTitle: out.BookTitle}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er internal.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&er); decodeErr == nil && er.Error != "" {
			return fmt.Errorf("%s", er.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
