package book

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/shelfpoint/shelfpoint/internal/transport"
)

type ServiceAPI interface {
	GetByCode(code string) (*Detail, error)
	List() ([]*Book, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

// GetByCode handles GET /api/books/{code}.
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		h.WriteError(w, http.StatusBadRequest, "book code is required")
		return
	}

	detail, err := h.Service.GetByCode(code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

// List handles GET /api/books.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"books": books})
}
