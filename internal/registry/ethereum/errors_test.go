package ethereum

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "certichain/pkg/domain-errors"
)

func TestMapFetchErrorRevertBecomesNotFound(t *testing.T) {
	err := mapFetchError(errors.New("execution reverted: Certificate does not exist"))
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestMapFetchErrorConnectionBecomesUnavailable(t *testing.T) {
	err := mapFetchError(errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"))
	assert.True(t, dErrors.Is(err, dErrors.CodeRegistryUnavailable))
}

func TestMapSubmitErrorDuplicate(t *testing.T) {
	err := mapSubmitError(errors.New("execution reverted: Certificate already exists"))
	assert.True(t, dErrors.Is(err, dErrors.CodeDuplicateID))
}

func TestMapSubmitErrorOwnerCheck(t *testing.T) {
	err := mapSubmitError(errors.New("execution reverted: Caller is not the registry owner"))
	assert.True(t, dErrors.Is(err, dErrors.CodePermissionDenied))
}

func TestMapSubmitErrorConnectionBecomesUnavailable(t *testing.T) {
	err := mapSubmitError(errors.New("Post \"http://localhost:8545\": EOF"))
	assert.True(t, dErrors.Is(err, dErrors.CodeRegistryUnavailable))
}

func TestCancellationIsNeverReinterpreted(t *testing.T) {
	assert.ErrorIs(t, mapFetchError(context.Canceled), context.Canceled)
	assert.ErrorIs(t, mapSubmitError(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.False(t, dErrors.Is(mapFetchError(context.Canceled), dErrors.CodeNotFound))
}

func TestMapMinedStatusRevertIsNeverADuplicate(t *testing.T) {
	err := mapMinedStatus(0, "0xabc")
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	assert.False(t, dErrors.Is(err, dErrors.CodeDuplicateID),
		"a reasonless on-chain revert must not trigger duplicate retries")
}

func TestMapMinedStatusSuccess(t *testing.T) {
	assert.NoError(t, mapMinedStatus(1, "0xabc"))
}

func TestNilPassesThrough(t *testing.T) {
	assert.NoError(t, mapFetchError(nil))
	assert.NoError(t, mapSubmitError(nil))
}
