// Package issue composes the identifier allocator and the registry client
// into the certificate issuance workflow.
package issue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"certichain/internal/allocator"
	"certichain/internal/audit"
	"certichain/internal/certificate"
	"certichain/internal/history"
	"certichain/internal/platform/metrics"
	"certichain/internal/registry"
	dErrors "certichain/pkg/domain-errors"
)

// maxAttempts bounds automatic re-allocation after a duplicate token id.
// Hitting the bound with a ~10^9 id space means something other than bad
// luck, so the failure surfaces to the caller.
const maxAttempts = 3

// Request carries the certificate to issue.
type Request struct {
	Recipient string
	Fields    certificate.Fields
}

// Outcome reports a committed issuance.
type Outcome struct {
	TokenID uint64
	Receipt *registry.Receipt
}

// Service runs issuance: allocate an id, submit, retry on collision.
type Service struct {
	allocator *allocator.Allocator
	registry  registry.Client
	history   history.Store
	audits    *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(
	alloc *allocator.Allocator,
	reg registry.Client,
	hist history.Store,
	audits *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		allocator: alloc,
		registry:  reg,
		history:   hist,
		audits:    audits,
		metrics:   m,
		logger:    logger,
	}
}

// Issue writes one new certificate record. A DuplicateID from the ledger
// draws a fresh identifier and retries; every other failure propagates
// unmodified.
func (s *Service) Issue(ctx context.Context, req Request) (*Outcome, error) {
	if err := certificate.ValidateForIssue(req.Recipient, req.Fields); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tokenID, err := s.allocator.Allocate()
		if err != nil {
			return nil, fmt.Errorf("allocate token id: %w", err)
		}

		start := time.Now()
		receipt, err := s.registry.Submit(ctx, tokenID, req.Recipient, req.Fields)
		s.metrics.ObserveRegistryCall("submit", time.Since(start))
		if err == nil {
			return s.committed(ctx, req, tokenID, receipt), nil
		}
		if !dErrors.Is(err, dErrors.CodeDuplicateID) {
			return nil, fmt.Errorf("submit certificate: %w", err)
		}

		lastErr = err
		s.metrics.IncrementIssuanceRetry()
		s.logger.WarnContext(ctx, "token id collision, drawing a fresh one",
			"token_id", tokenID,
			"attempt", attempt,
		)
	}
	return nil, fmt.Errorf("issue certificate after %d attempts: %w", maxAttempts, lastErr)
}

func (s *Service) committed(ctx context.Context, req Request, tokenID uint64, receipt *registry.Receipt) *Outcome {
	s.logger.InfoContext(ctx, "certificate issued",
		"token_id", tokenID,
		"tx_hash", receipt.TxHash,
		"block_number", receipt.BlockNumber,
	)
	s.metrics.IncrementIssued()

	if s.history != nil {
		entry := history.Entry{
			TokenID:     tokenID,
			Recipient:   req.Recipient,
			Name:        req.Fields.Name,
			Course:      req.Fields.Course,
			Issuer:      req.Fields.Issuer,
			IssueDate:   req.Fields.IssueDate,
			TxHash:      receipt.TxHash,
			BlockNumber: receipt.BlockNumber,
		}
		// The ledger write already succeeded; a history failure is an
		// observability gap, not a failed issuance.
		if err := s.history.Record(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to record issuance history",
				"token_id", tokenID,
				"error", err,
			)
		}
	}

	if s.audits != nil {
		s.audits.Emit(ctx, audit.Event{
			Action:  audit.ActionIssue,
			TokenID: tokenID,
			Actor:   req.Recipient,
			TxHash:  receipt.TxHash,
		})
	}
	return &Outcome{TokenID: tokenID, Receipt: receipt}
}
