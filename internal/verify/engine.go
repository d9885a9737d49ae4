// Package verify holds the verification engine: the decision logic that
// turns a fetched ledger record and a set of claimed field values into a
// verdict.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"certichain/internal/audit"
	"certichain/internal/certificate"
	"certichain/internal/platform/metrics"
	"certichain/internal/registry"
	dErrors "certichain/pkg/domain-errors"
)

// Engine computes verdicts. It accepts fully-formed requests only and
// never blocks on operator input; prompting is a presentation concern.
type Engine struct {
	registry registry.Client
	audits   *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewEngine(reg registry.Client, audits *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		registry: reg,
		audits:   audits,
		metrics:  m,
		logger:   logger,
	}
}

// Verify resolves the record and compares every claimed field against it.
//
// The verdict is a strict conjunction, not a similarity score: AUTHENTIC
// requires every compared field to match exactly, one mismatch is FAKE,
// zero compared fields is DISPLAYED_ONLY, and a missing record is UNKNOWN.
// Comparison is case-sensitive and whitespace-preserving; normalizing here
// would weaken the guarantee that verification reflects exactly what is on
// the ledger.
//
// Registry unavailability and context cancellation return an error and no
// verdict: the record's true state is unknown to the caller, not absent.
func (e *Engine) Verify(ctx context.Context, req *certificate.VerificationRequest) (*certificate.VerificationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	record, err := e.registry.Fetch(ctx, req.TokenID)
	e.metrics.ObserveRegistryCall("fetch", time.Since(start))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			return e.conclude(ctx, &certificate.VerificationResult{
				TokenID: req.TokenID,
				Verdict: certificate.VerdictUnknown,
			}), nil
		}
		return nil, fmt.Errorf("resolve certificate %d: %w", req.TokenID, err)
	}

	expected := req.Expected()
	if len(expected) == 0 {
		return e.conclude(ctx, &certificate.VerificationResult{
			TokenID: req.TokenID,
			Verdict: certificate.VerdictDisplayedOnly,
			Record:  record,
		}), nil
	}

	comparisons := make([]certificate.FieldComparison, 0, len(expected))
	allMatch := true
	for _, claim := range expected {
		stored := record.Value(claim.Field)
		match := claim.Value == stored
		if !match {
			allMatch = false
		}
		comparisons = append(comparisons, certificate.FieldComparison{
			Field:    claim.Field,
			Expected: claim.Value,
			Stored:   stored,
			Match:    match,
		})
	}

	verdict := certificate.VerdictFake
	if allMatch {
		verdict = certificate.VerdictAuthentic
	}
	return e.conclude(ctx, &certificate.VerificationResult{
		TokenID:     req.TokenID,
		Verdict:     verdict,
		Comparisons: comparisons,
		Record:      record,
	}), nil
}

func (e *Engine) conclude(ctx context.Context, result *certificate.VerificationResult) *certificate.VerificationResult {
	if e.logger != nil {
		e.logger.InfoContext(ctx, "verification completed",
			"token_id", result.TokenID,
			"verdict", result.Verdict,
			"compared_fields", len(result.Comparisons),
		)
	}
	if e.metrics != nil {
		e.metrics.ObserveVerdict(string(result.Verdict))
	}
	if e.audits != nil {
		e.audits.Emit(ctx, audit.Event{
			Action:  audit.ActionVerify,
			TokenID: result.TokenID,
			Verdict: string(result.Verdict),
		})
	}
	return result
}
