// Package registry defines the client port for the external certificate
// ledger. Adapters live in subpackages; everything above this interface
// deals in taxonomy codes, never raw ledger errors.
package registry

import (
	"context"

	"certichain/internal/certificate"
)

// Receipt confirms a committed write.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
}

//go:generate mockgen -source=client.go -destination=mocks/registry_mock.go -package=mocks Client

// Client is the thin typed binding to the ledger's write/read operations.
//
// Submit records one new immutable certificate. Fails with CodeDuplicateID
// when the token id is already recorded, CodePermissionDenied when the
// caller lacks write rights, CodeRegistryUnavailable on transient failure.
//
// Fetch reads a record by token id. Fails with CodeNotFound when the id is
// unrecorded, CodeRegistryUnavailable on transient failure. Every call is a
// fresh read; implementations must not cache.
//
// Both operations honor ctx cancellation by returning ctx.Err unchanged so
// callers can distinguish "abandoned" from any verdict.
type Client interface {
	Submit(ctx context.Context, tokenID uint64, recipient string, fields certificate.Fields) (*Receipt, error)
	Fetch(ctx context.Context, tokenID uint64) (*certificate.Record, error)
}
