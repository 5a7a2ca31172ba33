package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// MemberBalance handles GET /api/members/{id}/balance. The response carries
// both the stored balance and the ledger sum so operators can spot
// reconciliation drift at a glance; the two are equal by invariant.
func (h *Handler) MemberBalance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	m, err := h.members.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sum, err := h.entries.SumForMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("memberId", func(e *jx.Encoder) { e.Str(m.ID) })
			e.Field("pointsBalance", func(e *jx.Encoder) { e.Int64(m.PointsBalance) })
			e.Field("ledgerSum", func(e *jx.Encoder) { e.Int64(sum) })
			e.Field("discountPercent", func(e *jx.Encoder) { encodeDecimal(e, m.DiscountPercent) })
		})
	})
}

// MemberLedger handles GET /api/members/{id}/ledger.
func (h *Handler) MemberLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListByMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, entry := range entries {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Str(entry.ID) })
					e.Field("changeAmount", func(e *jx.Encoder) { e.Int64(entry.ChangeAmount) })
					e.Field("reason", func(e *jx.Encoder) { e.Str(entry.Reason) })
					e.Field("referenceType", func(e *jx.Encoder) { e.Str(string(entry.ReferenceType)) })
					e.Field("referenceId", func(e *jx.Encoder) { e.Str(entry.ReferenceID) })
					e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, entry.CreatedAt) })
				})
			}
		})
	})
}
