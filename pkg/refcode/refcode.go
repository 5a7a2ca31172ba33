// Package refcode generates human-readable reference codes for order numbers
// and reward vouchers.
//
// Codes draw from an unambiguous alphabet (no 0/O, 1/I/L) so they survive
// being read over the phone or typed from a printed invoice. Uniqueness is
// probabilistic here and enforced by unique constraints at the storage layer.
package refcode

import (
	"crypto/rand"
	"strings"
	"time"
)

const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// OrderNumber returns a new order number such as "AP-20260830-7K3QX9".
// The date prefix keeps numbers roughly sortable and easy to eyeball in
// back-office screens.
func OrderNumber(t time.Time) string {
	return "AP-" + t.UTC().Format("20060102") + "-" + random(6)
}

// Voucher returns a new voucher code such as "7K3Q-8MK2-ZPWX".
func Voucher() string {
	return random(4) + "-" + random(4) + "-" + random(4)
}

// random returns n characters drawn uniformly from the code alphabet.
func random(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}

	var b strings.Builder
	b.Grow(n)
	for _, c := range buf {
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String()
}
