// Package history keeps a local index of issuance receipts for operator
// listings. It is a convenience record only: the ledger stays the sole
// source of truth and the verification path never reads from here.
package history

import (
	"context"
	"time"
)

// Entry is one committed issuance.
type Entry struct {
	TokenID     uint64    `json:"token_id"`
	Recipient   string    `json:"recipient"`
	Name        string    `json:"name"`
	Course      string    `json:"course"`
	Issuer      string    `json:"issuer"`
	IssueDate   string    `json:"issue_date"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Store persists issuance entries.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	FindByToken(ctx context.Context, tokenID uint64) (*Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}
