package cart

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	cartIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	cartIDLength   = 12
)

// newCartID returns a fresh 12-character base-36 identifier. Generated once
// per container unless the persisted snapshot or an explicit option already
// provides an id.
func newCartID() string {
	buf := make([]byte, cartIDLength)
	if _, err := rand.Read(buf); err != nil {
		// Hex is a subset of base-36, so a UUID keeps the contract.
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:cartIDLength]
	}
	for i, b := range buf {
		buf[i] = cartIDAlphabet[int(b)%len(cartIDAlphabet)]
	}
	return string(buf)
}
