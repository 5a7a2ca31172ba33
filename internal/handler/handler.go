// Package handler exposes the storefront domain over JSON HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/quietline/storefront/internal/domain/catalog"
	"github.com/quietline/storefront/internal/domain/discount"
	"github.com/quietline/storefront/internal/domain/ledger"
	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/order"
	"github.com/quietline/storefront/internal/domain/reward"
)

// memberHeader carries the authenticated member identity, established by the
// session layer in front of this service.
const memberHeader = "X-Member-ID"

// Handler implements the storefront HTTP API, delegating business logic to
// the injected domain services and repositories.
type Handler struct {
	variants  catalog.Repository
	members   member.Repository
	entries   ledger.Repository
	discounts discount.Repository
	orders    *order.Service
	rewards   *reward.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	variants catalog.Repository,
	members member.Repository,
	entries ledger.Repository,
	discounts discount.Repository,
	orders *order.Service,
	rewards *reward.Service,
) *Handler {
	return &Handler{
		variants:  variants,
		members:   members,
		entries:   entries,
		discounts: discounts,
		orders:    orders,
		rewards:   rewards,
	}
}

// memberID extracts the authenticated member identity from the request.
func memberID(r *http.Request) string {
	return r.Header.Get(memberHeader)
}
