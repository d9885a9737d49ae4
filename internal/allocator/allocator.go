// Package allocator assigns token identifiers for new certificates.
//
// Identifiers are drawn uniformly from a wide space with no persisted state
// and no registry round trip, so allocation never races a ledger read. This
// keeps accidental collisions improbable rather than impossible; the ledger
// stays the sole arbiter and rejects a reused identifier with DuplicateID,
// which the issuance workflow handles by drawing again.
package allocator

import (
	"crypto/rand"
	"math/big"

	dErrors "certichain/pkg/domain-errors"
)

// tokenSpace bounds allocation to [1, 10^9). Zero is excluded because the
// operator surface treats a zero token id as "not supplied".
const tokenSpace = 1_000_000_000

// Allocator draws token identifiers. The zero value is ready to use.
type Allocator struct{}

func New() *Allocator {
	return &Allocator{}
}

// Allocate returns a fresh token identifier.
func (a *Allocator) Allocate() (uint64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(tokenSpace-1))
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "draw token id", err)
	}
	return n.Uint64() + 1, nil
}
