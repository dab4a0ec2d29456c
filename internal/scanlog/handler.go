package scanlog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/shelfpoint/shelfpoint/internal/transport"
)

type ServiceAPI interface {
	Add(dto AddScanDTO) (*ScanRecord, error)
	Lookup(barcode string) (*ScanRecord, error)
	List() ([]*ScanRecord, error)
	Delete(id int64) (int64, error)
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

// List handles GET /api/barcodes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"barcodes": records})
}

// Lookup handles GET /api/barcodes/{barcode}: an exists check before the
// operator decides to log an item.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if barcode == "" {
		h.WriteError(w, http.StatusBadRequest, "barcode is required")
		return
	}

	rec, err := h.Service.Lookup(barcode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"exists":  rec != nil,
		"barcode": rec,
	})
}

// Add handles POST /api/barcodes.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var dto AddScanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Add: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.Add(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":      rec.ID,
		"barcode": rec.Barcode,
		"message": "barcode added successfully",
	})
}

// Delete handles DELETE /api/barcodes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("Delete: invalid scan id", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	changes, err := h.Service.Delete(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "barcode deleted successfully",
		"changes": changes,
	})
}
