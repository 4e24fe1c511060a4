// internal/api/handler/list.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"groupcart/internal/service"
	"groupcart/internal/util"
)

// ListHandler handles HTTP requests for personal lists, the group cart and
// the favor ledger.
type ListHandler struct {
	service service.ListService
	logger  *slog.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(svc service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		service: svc,
		logger:  logger,
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, util.ErrValidation
	}
	return id, nil
}

// GetList handles personal list retrieval.
// GET /users/{username}/list
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, items)
}

// ItemRequest represents the request body for item creation and updates.
type ItemRequest struct {
	Item     string `json:"item"`
	Priority int    `json:"priority"`
}

// CreateItem handles adding a want to a personal list.
// POST /users/{username}/list
func (h *ListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	item, err := h.service.CreateItem(r.Context(), chi.URLParam(r, "username"), req.Item, req.Priority)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, item)
}

// UpdateItem handles editing an item's text or priority.
// PATCH /users/{username}/list/{itemID}
func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "username"), itemID, req.Item, req.Priority)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, item)
}

// DeleteItem handles removing an item.
// DELETE /users/{username}/list/{itemID}
func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "username"), itemID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSharedList handles the merged group cart.
// GET /groups/{groupID}/cart
func (h *ListHandler) GetSharedList(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.SharedList(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, cart)
}

// GetFavorsFor handles favors done for a user.
// GET /users/{username}/favors/for
func (h *ListHandler) GetFavorsFor(w http.ResponseWriter, r *http.Request) {
	favors, err := h.service.FavorsFor(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, favors)
}

// GetFavorsBy handles favors purchased by a user.
// GET /users/{username}/favors/by
func (h *ListHandler) GetFavorsBy(w http.ResponseWriter, r *http.Request) {
	favors, err := h.service.FavorsBy(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, favors)
}

// FulfillRequest represents the request body for the atomic fulfill
// endpoint.
type FulfillRequest struct {
	ItemID int64           `json:"itemId"`
	Item   string          `json:"item"`
	By     string          `json:"by"`
	For    string          `json:"for"`
	Amount decimal.Decimal `json:"amount"`
}

// Fulfill handles marking an item purchased and recording the favor.
// POST /favors/fulfill
func (h *ListHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req FulfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}
	if req.By == "" || req.For == "" {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	favor, err := h.service.FulfillItem(r.Context(), service.FulfillParams{
		ItemID: req.ItemID,
		By:     req.By,
		For:    req.For,
		Amount: req.Amount,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, favor)
}

// Void handles reversing an unreimbursed fulfillment.
// POST /favors/{favorID}/void
func (h *ListHandler) Void(w http.ResponseWriter, r *http.Request) {
	favorID, err := pathID(r, "favorID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	if err := h.service.VoidFavor(r.Context(), favorID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFavorRequest represents the request body for reimbursement updates.
type UpdateFavorRequest struct {
	Reimbursed bool             `json:"reimbursed"`
	Amount     *decimal.Decimal `json:"amount"`
}

// UpdateFavor handles toggling reimbursement and correcting amounts.
// PATCH /favors/{favorID}
func (h *ListHandler) UpdateFavor(w http.ResponseWriter, r *http.Request) {
	favorID, err := pathID(r, "favorID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	var req UpdateFavorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	favor, err := h.service.UpdateFavor(r.Context(), favorID, req.Reimbursed, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, favor)
}
