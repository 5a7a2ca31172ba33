package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

// ListRewards handles GET /api/rewards.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	types, err := h.rewards.ListTypes(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, t := range types {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Str(t.ID) })
					e.Field("name", func(e *jx.Encoder) { e.Str(t.Name) })
					e.Field("pointsCost", func(e *jx.Encoder) { e.Int64(t.PointsCost) })
					e.Field("valueCents", func(e *jx.Encoder) { e.Int64(t.ValueCents) })
				})
			}
		})
	})
}

type redeemRequest struct {
	RewardTypeID string `json:"rewardTypeId"`
}

// Redeem handles POST /api/rewards/redeem.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	mid := memberID(r)
	if mid == "" {
		writeError(w, http.StatusUnauthorized, "member identity required")
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RewardTypeID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	red, err := h.rewards.Redeem(r.Context(), mid, req.RewardTypeID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeRedeemed(e, red) })
}

// MemberVouchers handles GET /api/members/{id}/vouchers.
func (h *Handler) MemberVouchers(w http.ResponseWriter, r *http.Request) {
	redeemed, err := h.rewards.ListByMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range redeemed {
				encodeRedeemed(e, &redeemed[i])
			}
		})
	})
}
