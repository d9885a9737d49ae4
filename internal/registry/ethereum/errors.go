package ethereum

import (
	"context"
	"errors"
	"strings"

	dErrors "certichain/pkg/domain-errors"
)

// Revert reasons emitted by contracts/CertiChain.sol. The node surfaces
// them inside "execution reverted" errors, so substring matching here is
// the one place in the codebase that inspects error text.
const (
	revertAlreadyExists = "certificate already exists"
	revertDoesNotExist  = "certificate does not exist"
	revertNotOwner      = "caller is not the registry owner"
)

// mapSubmitError translates a raw node error from a write path.
func mapSubmitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, revertAlreadyExists):
		return dErrors.Wrap(dErrors.CodeDuplicateID, "token id already recorded", err)
	case strings.Contains(msg, revertNotOwner):
		return dErrors.Wrap(dErrors.CodePermissionDenied, "caller lacks registry write rights", err)
	case strings.Contains(msg, "execution reverted"):
		return dErrors.Wrap(dErrors.CodePermissionDenied, "registry rejected the write", err)
	default:
		return dErrors.Wrap(dErrors.CodeRegistryUnavailable, "registry write failed", err)
	}
}

// mapMinedStatus classifies a mined receipt. A failed receipt carries no
// revert reason, so the cause is unknowable here: it could be the duplicate
// guard or the owner check. It must not look like a duplicate, or the
// issuance workflow would retry a permission failure.
func mapMinedStatus(status uint64, txHash string) error {
	if status != 0 {
		return nil
	}
	return dErrors.Newf(dErrors.CodeInternal, "transaction %s reverted on chain", txHash)
}

// mapFetchError translates a raw node error from a read path.
func mapFetchError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, revertDoesNotExist), strings.Contains(msg, "execution reverted"):
		return dErrors.Wrap(dErrors.CodeNotFound, "no certificate under token id", err)
	default:
		return dErrors.Wrap(dErrors.CodeRegistryUnavailable, "registry read failed", err)
	}
}
