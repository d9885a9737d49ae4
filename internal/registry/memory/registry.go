// Package memory is an in-process registry with the same failure contract
// as the on-chain adapter. Used by unit tests and --dev runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"certichain/internal/certificate"
	"certichain/internal/registry"
	dErrors "certichain/pkg/domain-errors"
)

// Registry stores records in a mutex-guarded map.
type Registry struct {
	mu      sync.RWMutex
	records map[uint64]certificate.Record
	nextBlk uint64
}

func New() *Registry {
	return &Registry{records: make(map[uint64]certificate.Record)}
}

func (r *Registry) Submit(ctx context.Context, tokenID uint64, recipient string, fields certificate.Fields) (*registry.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[tokenID]; exists {
		return nil, dErrors.Newf(dErrors.CodeDuplicateID, "token id %d already recorded", tokenID)
	}
	r.records[tokenID] = certificate.Record{
		TokenID:   tokenID,
		Recipient: recipient,
		Fields:    fields,
	}
	r.nextBlk++
	return &registry.Receipt{
		TxHash:      fmt.Sprintf("0x%064x", tokenID),
		BlockNumber: r.nextBlk,
	}, nil
}

func (r *Registry) Fetch(ctx context.Context, tokenID uint64) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[tokenID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no certificate under token id %d", tokenID)
	}
	out := rec
	return &out, nil
}

var _ registry.Client = (*Registry)(nil)
