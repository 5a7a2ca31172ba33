package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quietline/storefront/internal/domain/catalog"
	"github.com/quietline/storefront/internal/domain/discount"
	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/order"
	"github.com/quietline/storefront/internal/domain/reward"
)

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(e.Bytes()) //nolint:errcheck // client went away
}

// writeError writes the standard {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeDomainError maps domain errors onto HTTP status codes. Each error kind
// keeps a distinct message so callers can tell "fix your input" from "this no
// longer exists" from "try again later".
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		quantityErr   *order.InvalidQuantityError
		shippingErr   *order.IncompleteShippingError
		variantErr    *order.VariantUnavailableError
		transitionErr *order.InvalidTransitionError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.As(err, &quantityErr),
		errors.As(err, &shippingErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, member.ErrInsufficientPoints):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &variantErr),
		errors.As(err, &transitionErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, reward.ErrUnavailable),
		errors.Is(err, discount.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Field encoders shared across endpoints.

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	// decimal.String always renders a valid JSON number token.
	e.RawStr(d.String())
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("number", func(e *jx.Encoder) { e.Str(o.Number) })
		e.Field("memberId", func(e *jx.Encoder) { e.Str(o.MemberID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("subtotalCents", func(e *jx.Encoder) { e.Int64(o.SubtotalCents) })
		e.Field("discountPercent", func(e *jx.Encoder) { encodeDecimal(e, o.DiscountPercent) })
		e.Field("discountAmountCents", func(e *jx.Encoder) { e.Int64(o.DiscountAmountCents) })
		e.Field("totalCents", func(e *jx.Encoder) { e.Int64(o.TotalCents) })
		e.Field("pointsEarned", func(e *jx.Encoder) { e.Int64(o.PointsEarned) })
		e.Field("notes", func(e *jx.Encoder) { e.Str(o.Notes) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					encodeOrderItem(e, it)
				}
			})
		})
	})
}

func encodeOrderItem(e *jx.Encoder, it order.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productName", func(e *jx.Encoder) { e.Str(it.ProductName) })
		e.Field("variantDescription", func(e *jx.Encoder) { e.Str(it.VariantDescription) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("unitPriceCents", func(e *jx.Encoder) { e.Int64(it.UnitPriceCents) })
		e.Field("lineTotalCents", func(e *jx.Encoder) { e.Int64(it.LineTotalCents) })
	})
}

func encodeVariant(e *jx.Encoder, v catalog.Variant) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(v.ID) })
		e.Field("productId", func(e *jx.Encoder) { e.Str(v.ProductID) })
		e.Field("productName", func(e *jx.Encoder) { e.Str(v.ProductName) })
		e.Field("thickness", func(e *jx.Encoder) { e.Str(v.Thickness) })
		e.Field("size", func(e *jx.Encoder) { e.Str(v.Size) })
		e.Field("faceColor", func(e *jx.Encoder) { e.Str(v.FaceColor) })
		e.Field("priceCents", func(e *jx.Encoder) { e.Int64(v.PriceCents) })
	})
}

func encodeRedeemed(e *jx.Encoder, red *reward.Redeemed) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(red.ID) })
		e.Field("rewardTypeId", func(e *jx.Encoder) { e.Str(red.RewardTypeID) })
		e.Field("voucherCode", func(e *jx.Encoder) { e.Str(red.VoucherCode) })
		e.Field("pointsSpent", func(e *jx.Encoder) { e.Int64(red.PointsSpent) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(red.Status)) })
		e.Field("expiresAt", func(e *jx.Encoder) { encodeTime(e, red.ExpiresAt) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, red.CreatedAt) })
	})
}
