package refcode

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderNumberRe = regexp.MustCompile(`^AP-\d{8}-[23456789ABCDEFGHJKMNPQRSTUVWXYZ]{6}$`)
	voucherRe     = regexp.MustCompile(`^([23456789ABCDEFGHJKMNPQRSTUVWXYZ]{4}-){2}[23456789ABCDEFGHJKMNPQRSTUVWXYZ]{4}$`)
)

func TestOrderNumber(t *testing.T) {
	at := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)

	n := OrderNumber(at)
	require.Regexp(t, orderNumberRe, n)
	assert.Contains(t, n, "20260830")
}

func TestOrderNumber_UTCDate(t *testing.T) {
	// 1am AEST on the 31st is still the 30th in UTC.
	aest := time.FixedZone("AEST", 10*60*60)
	at := time.Date(2026, 8, 31, 1, 0, 0, 0, aest)

	assert.Contains(t, OrderNumber(at), "20260830")
}

func TestVoucher(t *testing.T) {
	v := Voucher()
	require.Regexp(t, voucherRe, v)
}

func TestCodesVary(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		seen[Voucher()] = struct{}{}
	}
	// 12 random characters apiece; collisions here would mean the generator
	// is broken, not unlucky.
	assert.Len(t, seen, 50)
}
