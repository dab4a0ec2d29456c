package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/shelfpoint/shelfpoint/internal/transport"
)

type ServiceAPI interface {
	Checkout(dto CheckoutDTO) (*Receipt, error)
	Return(dto ReturnDTO) (*ReturnReceipt, error)
	ListActive() ([]*ActiveCheckout, error)
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

// Checkout handles POST /api/checkouts.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var dto CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Checkout: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.Service.Checkout(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, receipt)
}

// Return handles POST /api/checkouts/return.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	var dto ReturnDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Return: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.Service.Return(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, receipt)
}

// ListActive handles GET /api/checkouts/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.Service.ListActive()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"checkouts": active})
}
