package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/quietline/storefront/internal/domain/order"
)

type placeOrderRequest struct {
	Items []struct {
		VariantID string `json:"variantId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Shipping struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Line1     string `json:"line1"`
		Line2     string `json:"line2"`
		City      string `json:"city"`
		State     string `json:"state"`
		Postcode  string `json:"postcode"`
		Phone     string `json:"phone"`
	} `json:"shipping"`
	Notes string `json:"notes"`
}

// PlaceOrder handles POST /api/orders. There is no idempotency key: a
// double-submitted cart creates two orders, matching the behaviour the
// storefront client guards against with a disabled submit button.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mid := memberID(r)
	if mid == "" {
		writeError(w, http.StatusUnauthorized, "member identity required")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]order.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = order.CartLine{VariantID: item.VariantID, Quantity: item.Quantity}
	}

	o, err := h.orders.Place(r.Context(), order.PlaceRequest{
		MemberID: mid,
		Lines:    lines,
		Shipping: order.Shipping{
			FirstName: req.Shipping.FirstName,
			LastName:  req.Shipping.LastName,
			Line1:     req.Shipping.Line1,
			Line2:     req.Shipping.Line2,
			City:      req.Shipping.City,
			State:     req.Shipping.State,
			Postcode:  req.Shipping.Postcode,
			Phone:     req.Shipping.Phone,
		},
		Notes: req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// GetOrder handles GET /api/orders/{id}. Members only see their own orders;
// admin callers (API-key gated route) pass no member header.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if mid := memberID(r); mid != "" && mid != o.MemberID {
		writeError(w, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// ListMemberOrders handles GET /api/members/{id}/orders.
func (h *Handler) ListMemberOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i])
			}
		})
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status. Admin only.
// Arrival at delivered triggers the points award exactly once.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}
