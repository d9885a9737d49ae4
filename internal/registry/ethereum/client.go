// Package ethereum implements the registry client against the CertiChain
// contract on an Ethereum-compatible ledger.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certichain/internal/certificate"
	"certichain/internal/registry"
	dErrors "certichain/pkg/domain-errors"
)

// Client binds the deployed CertiChain contract. It holds no state beyond
// the connection handle and the contract address; nothing is mutated after
// construction, so one Client may be shared by concurrent callers.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
	signer   *ecdsa.PrivateKey
	chainID  *big.Int
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Dial connects to the node, resolves the chain id, and binds the contract
// at the given address. privateKeyHex may be empty for read-only use;
// Submit then fails with CodePermissionDenied before touching the ledger.
func Dial(ctx context.Context, rpcURL string, contractAddr string, privateKeyHex string, logger *slog.Logger) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeRegistryUnavailable, "dial ledger rpc", err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, dErrors.Wrap(dErrors.CodeRegistryUnavailable, "resolve chain id", err)
	}

	contractABI, err := parsedABI()
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	var signer *ecdsa.PrivateKey
	if privateKeyHex != "" {
		signer, err = crypto.HexToECDSA(privateKeyHex)
		if err != nil {
			eth.Close()
			return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "parse signing key", err)
		}
	}

	address := common.HexToAddress(contractAddr)
	return &Client{
		eth:      eth,
		contract: bind.NewBoundContract(address, contractABI, eth, eth, eth),
		address:  address,
		signer:   signer,
		chainID:  chainID,
		logger:   logger,
		tracer:   otel.Tracer("certichain/registry/ethereum"),
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Address returns the bound contract address.
func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) Submit(ctx context.Context, tokenID uint64, recipient string, fields certificate.Fields) (*registry.Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "registry.Submit",
		trace.WithAttributes(attribute.Int64("certichain.token_id", int64(tokenID))))
	defer span.End()

	if c.signer == nil {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "no signing key configured")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.signer, c.chainID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "build transactor", err)
	}
	opts.Context = ctx

	tx, err := c.contract.Transact(opts, "issueCertificate",
		common.HexToAddress(recipient),
		new(big.Int).SetUint64(tokenID),
		fields.Name,
		fields.Course,
		fields.Issuer,
		fields.IssueDate,
	)
	if err != nil {
		return nil, mapSubmitError(err)
	}

	c.logger.InfoContext(ctx, "certificate transaction sent",
		"token_id", tokenID,
		"tx_hash", tx.Hash().Hex(),
	)

	// The write only counts once mined; the record must be visible to
	// subsequent reads before we hand back a receipt.
	mined, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, mapSubmitError(err)
	}
	if err := mapMinedStatus(mined.Status, tx.Hash().Hex()); err != nil {
		return nil, err
	}

	return &registry.Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: mined.BlockNumber.Uint64(),
	}, nil
}

func (c *Client) Fetch(ctx context.Context, tokenID uint64) (*certificate.Record, error) {
	ctx, span := c.tracer.Start(ctx, "registry.Fetch",
		trace.WithAttributes(attribute.Int64("certichain.token_id", int64(tokenID))))
	defer span.End()

	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCertificate", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, mapFetchError(err)
	}
	if len(out) != 4 {
		return nil, dErrors.Newf(dErrors.CodeInternal, "unexpected getCertificate arity %d", len(out))
	}

	rec := &certificate.Record{TokenID: tokenID}
	var ok bool
	if rec.Name, ok = out[0].(string); !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "unexpected getCertificate return types")
	}
	rec.Course, _ = out[1].(string)
	rec.Issuer, _ = out[2].(string)
	rec.IssueDate, _ = out[3].(string)
	return rec, nil
}

var _ registry.Client = (*Client)(nil)
