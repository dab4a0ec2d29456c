package user

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/shelfpoint/shelfpoint/internal/transport"
)

type ServiceAPI interface {
	GetByCode(code string) (*User, error)
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

// GetByCode handles GET /api/users/{code}.
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		h.WriteError(w, http.StatusBadRequest, "user code is required")
		return
	}

	u, err := h.Service.GetByCode(code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}
