package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListVariants handles GET /api/variants.
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.variants.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, v := range variants {
				encodeVariant(e, v)
			}
		})
	})
}

// GetDiscountCode handles GET /api/discount-codes/{code}. The storefront
// checkout page uses it to show whether a typed promo code is live.
func (h *Handler) GetDiscountCode(w http.ResponseWriter, r *http.Request) {
	c, err := h.discounts.FindByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
			e.Field("percent", func(e *jx.Encoder) { encodeDecimal(e, c.Percent) })
			e.Field("description", func(e *jx.Encoder) { e.Str(c.Description) })
		})
	})
}
