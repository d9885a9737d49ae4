package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certichain/internal/certificate"
	dErrors "certichain/pkg/domain-errors"
)

func sampleFields() certificate.Fields {
	return certificate.Fields{
		Name:      "Alice Smith",
		Course:    "CS101",
		Issuer:    "MIT",
		IssueDate: "30-10-2025",
	}
}

func TestSubmitThenFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := New()

	receipt, err := reg.Submit(ctx, 42, "0xA1", sampleFields())
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.NotEmpty(t, receipt.TxHash)

	rec, err := reg.Fetch(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rec.TokenID)
	assert.Equal(t, sampleFields(), rec.Fields)
}

func TestDuplicateSubmitFails(t *testing.T) {
	ctx := context.Background()
	reg := New()

	_, err := reg.Submit(ctx, 42, "0xA1", sampleFields())
	require.NoError(t, err)

	_, err = reg.Submit(ctx, 42, "0xB2", sampleFields())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeDuplicateID))
}

func TestFetchUnknownTokenFails(t *testing.T) {
	reg := New()

	_, err := reg.Fetch(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestFetchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := New()
	_, err := reg.Submit(ctx, 7, "0xA1", sampleFields())
	require.NoError(t, err)

	first, err := reg.Fetch(ctx, 7)
	require.NoError(t, err)
	second, err := reg.Fetch(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCancelledContextPropagates(t *testing.T) {
	reg := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Fetch(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	// A cancelled call must never be mistaken for a taxonomy failure.
	assert.False(t, dErrors.Is(err, dErrors.CodeNotFound))
}
