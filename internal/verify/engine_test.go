package verify

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"certichain/internal/audit"
	"certichain/internal/certificate"
	"certichain/internal/platform/metrics"
	"certichain/internal/registry/memory"
	"certichain/internal/registry/mocks"
	dErrors "certichain/pkg/domain-errors"
)

func strPtr(s string) *string { return &s }

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	reg := memory.New()
	_, err := reg.Submit(context.Background(), 42, "0xA1", certificate.Fields{
		Name:      "Alice Smith",
		Course:    "CS101",
		Issuer:    "MIT",
		IssueDate: "30-10-2025",
	})
	require.NoError(t, err)
	return NewEngine(reg, nil, nil, testLogger())
}

func TestVerifyAuthenticWhenAllComparedFieldsMatch(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 42,
		Name:    strPtr("Alice Smith"),
		Course:  strPtr("CS101"),
	})
	require.NoError(t, err)

	assert.Equal(t, certificate.VerdictAuthentic, result.Verdict)
	require.Len(t, result.Comparisons, 2)
	for _, cmp := range result.Comparisons {
		assert.True(t, cmp.Match)
	}
}

func TestVerifyAuthenticOnFullExactSubset(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID:   42,
		Name:      strPtr("Alice Smith"),
		Course:    strPtr("CS101"),
		Issuer:    strPtr("MIT"),
		IssueDate: strPtr("30-10-2025"),
	})
	require.NoError(t, err)
	assert.Equal(t, certificate.VerdictAuthentic, result.Verdict)
	assert.Len(t, result.Comparisons, 4)
}

func TestVerifySingleMismatchIsFakeRegardlessOfOtherMatches(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID:   42,
		Name:      strPtr("Alice Smith"),
		Course:    strPtr("CS101"),
		Issuer:    strPtr("MIT"),
		IssueDate: strPtr("31-10-2025"),
	})
	require.NoError(t, err)

	assert.Equal(t, certificate.VerdictFake, result.Verdict)
	matches := 0
	for _, cmp := range result.Comparisons {
		if cmp.Match {
			matches++
		}
	}
	assert.Equal(t, 3, matches)
}

func TestVerifyComparisonIsCaseSensitive(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 42,
		Name:    strPtr("alice smith"),
	})
	require.NoError(t, err)
	assert.Equal(t, certificate.VerdictFake, result.Verdict)
}

func TestVerifyComparisonPreservesWhitespace(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 42,
		Name:    strPtr("Alice Smith "),
	})
	require.NoError(t, err)

	assert.Equal(t, certificate.VerdictFake, result.Verdict)
	require.Len(t, result.Comparisons, 1)
	assert.Equal(t, "Alice Smith ", result.Comparisons[0].Expected)
	assert.Equal(t, "Alice Smith", result.Comparisons[0].Stored)
}

func TestVerifyEmptyStringClaimIsStillCompared(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 42,
		Name:    strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, certificate.VerdictFake, result.Verdict)
}

func TestVerifyNoExpectedFieldsIsDisplayedOnly(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{TokenID: 42})
	require.NoError(t, err)

	assert.Equal(t, certificate.VerdictDisplayedOnly, result.Verdict)
	assert.Empty(t, result.Comparisons)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Alice Smith", result.Record.Name)
}

func TestVerifyUnknownTokenIsUnknownRegardlessOfClaims(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 999,
		Name:    strPtr("Alice Smith"),
	})
	require.NoError(t, err)

	assert.Equal(t, certificate.VerdictUnknown, result.Verdict)
	assert.Empty(t, result.Comparisons)
	assert.Nil(t, result.Record)
}

func TestVerifyUnavailableRegistryYieldsNoVerdict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg := mocks.NewMockClient(ctrl)
	reg.EXPECT().
		Fetch(gomock.Any(), uint64(42)).
		Return(nil, dErrors.New(dErrors.CodeRegistryUnavailable, "node down"))

	engine := NewEngine(reg, nil, nil, testLogger())
	result, err := engine.Verify(context.Background(), &certificate.VerificationRequest{TokenID: 42})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.Is(err, dErrors.CodeRegistryUnavailable))
}

func TestVerifyCancellationYieldsNoVerdict(t *testing.T) {
	engine := seededEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Verify(ctx, &certificate.VerificationRequest{TokenID: 42})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestVerifyRejectsMissingTokenBeforeAnyLedgerCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg := mocks.NewMockClient(ctrl)
	// No Fetch expectation: a ledger call would fail the test.

	engine := NewEngine(reg, nil, nil, testLogger())
	_, err := engine.Verify(context.Background(), &certificate.VerificationRequest{})

	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestVerifyEmitsAuditEvent(t *testing.T) {
	reg := memory.New()
	_, err := reg.Submit(context.Background(), 7, "0xA1", certificate.Fields{
		Name: "Bob", Course: "EE", Issuer: "ETH", IssueDate: "01-01-2026",
	})
	require.NoError(t, err)

	pub := audit.NewPublisher(4, testLogger())
	engine := NewEngine(reg, pub, nil, testLogger())

	_, err = engine.Verify(context.Background(), &certificate.VerificationRequest{
		TokenID: 7,
		Name:    strPtr("Bob"),
	})
	require.NoError(t, err)

	select {
	case event := <-pub.Inbox():
		assert.Equal(t, audit.ActionVerify, event.Action)
		assert.Equal(t, uint64(7), event.TokenID)
		assert.Equal(t, "AUTHENTIC", event.Verdict)
	default:
		t.Fatal("expected an audit event")
	}
}

func TestVerifyObservesRegistryCallDuration(t *testing.T) {
	m := metrics.New()
	reg := memory.New()
	_, err := reg.Submit(context.Background(), 42, "0xA1", certificate.Fields{
		Name: "Alice Smith", Course: "CS101", Issuer: "MIT", IssueDate: "30-10-2025",
	})
	require.NoError(t, err)

	engine := NewEngine(reg, nil, m, testLogger())
	_, err = engine.Verify(context.Background(), &certificate.VerificationRequest{TokenID: 42})
	require.NoError(t, err)

	count := testutil.CollectAndCount(m.RegistryCallDuration, "certichain_registry_call_duration_seconds")
	assert.Equal(t, 1, count, "fetch latency must be observed")
}
