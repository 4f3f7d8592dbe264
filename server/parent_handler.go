package server

import (
	"net/http"

	"schallwerk/service"
	"schallwerk/shopify"
)

// parentHandler exposes the parent player and checkout endpoints.
type parentHandler struct {
	svc *service.ParentService
}

func newParentHandler(svc *service.ParentService) *parentHandler {
	return &parentHandler{svc: svc}
}

// ListPreviews returns the preview listing, gated by the release rule.
func (h *parentHandler) ListPreviews(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	listing, err := h.svc.ListPreviews(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

type checkoutLine struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	Lines []checkoutLine `json:"lines" validate:"required,min=1,dive"`
}

// CreateCheckout opens a shop cart for the parent's event and returns the
// hosted checkout URL.
func (h *parentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	lines := make([]shopify.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, shopify.CartLine{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	checkoutURL, err := h.svc.CreateCheckout(r.Context(), sess, lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkoutUrl": checkoutURL})
}
