package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dErrors "certichain/pkg/domain-errors"
)

// PostgresStore persists issuance history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed history store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the history table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS issuance_history (
			token_id     BIGINT PRIMARY KEY,
			recipient    TEXT NOT NULL,
			name         TEXT NOT NULL,
			course       TEXT NOT NULL,
			issuer       TEXT NOT NULL,
			issue_date   TEXT NOT NULL,
			tx_hash      TEXT NOT NULL,
			block_number BIGINT NOT NULL,
			issued_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate issuance_history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issuance_history
			(token_id, recipient, name, course, issuer, issue_date, tx_hash, block_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		int64(entry.TokenID),
		entry.Recipient,
		entry.Name,
		entry.Course,
		entry.Issuer,
		entry.IssueDate,
		entry.TxHash,
		int64(entry.BlockNumber),
	)
	if err != nil {
		return fmt.Errorf("record issuance: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, tokenID uint64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token_id, recipient, name, course, issuer, issue_date, tx_hash, block_number, issued_at
		FROM issuance_history
		WHERE token_id = $1`,
		int64(tokenID),
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no issuance history for token id %d", tokenID)
		}
		return nil, fmt.Errorf("find issuance by token: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_id, recipient, name, course, issuer, issue_date, tx_hash, block_number, issued_at
		FROM issuance_history
		ORDER BY issued_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list issuance history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issuance entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuance history: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var entry Entry
	var tokenID, blockNumber int64
	err := s.Scan(
		&tokenID,
		&entry.Recipient,
		&entry.Name,
		&entry.Course,
		&entry.Issuer,
		&entry.IssueDate,
		&entry.TxHash,
		&blockNumber,
		&entry.IssuedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.TokenID = uint64(tokenID)
	entry.BlockNumber = uint64(blockNumber)
	return &entry, nil
}

var _ Store = (*PostgresStore)(nil)
