package ethereum

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	dErrors "certichain/pkg/domain-errors"
)

// Deploy publishes the CertiChain contract from its compiled artifact and
// waits for the deployment to be mined. The returned address is the single
// piece of local state the rest of the system persists.
func Deploy(ctx context.Context, rpcURL string, privateKeyHex string, art *Artifact, logger *slog.Logger) (common.Address, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return common.Address{}, dErrors.Wrap(dErrors.CodeRegistryUnavailable, "dial ledger rpc", err)
	}
	defer eth.Close()

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return common.Address{}, dErrors.Wrap(dErrors.CodeRegistryUnavailable, "resolve chain id", err)
	}

	signer, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, dErrors.Wrap(dErrors.CodeInvalidInput, "parse signing key", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(signer, chainID)
	if err != nil {
		return common.Address{}, dErrors.Wrap(dErrors.CodeInternal, "build transactor", err)
	}
	opts.Context = ctx

	var contractABI abi.ABI
	if len(art.ABI) > 0 {
		contractABI, err = abi.JSON(strings.NewReader(string(art.ABI)))
	} else {
		contractABI, err = parsedABI()
	}
	if err != nil {
		return common.Address{}, dErrors.Wrap(dErrors.CodeInvalidInput, "parse artifact abi", err)
	}

	address, tx, _, err := bind.DeployContract(opts, contractABI, common.FromHex(art.Bytecode), eth)
	if err != nil {
		return common.Address{}, mapSubmitError(err)
	}

	logger.InfoContext(ctx, "deployment transaction sent", "tx_hash", tx.Hash().Hex())

	if _, err := bind.WaitDeployed(ctx, eth, tx); err != nil {
		return common.Address{}, mapSubmitError(err)
	}
	return address, nil
}
