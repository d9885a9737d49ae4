package ethereum

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// certiChainABI mirrors contracts/CertiChain.sol. Only the two registry
// operations are bound; the contract exposes nothing else.
const certiChainABI = `[
  {
    "inputs": [
      {"internalType": "address", "name": "recipient", "type": "address"},
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "course", "type": "string"},
      {"internalType": "string", "name": "issuer", "type": "string"},
      {"internalType": "string", "name": "issueDate", "type": "string"}
    ],
    "name": "issueCertificate",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"}
    ],
    "name": "getCertificate",
    "outputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "course", "type": "string"},
      {"internalType": "string", "name": "issuer", "type": "string"},
      {"internalType": "string", "name": "issueDate", "type": "string"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

func parsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(certiChainABI))
}

// Artifact is the slice of a Hardhat build artifact the deploy path needs.
type Artifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode string          `json:"bytecode"`
}

// LoadArtifact reads a compiled contract artifact from disk. Deployment
// uses the compiler output directly instead of vendoring bytecode into the
// binary.
func LoadArtifact(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract artifact: %w", err)
	}
	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("parse contract artifact %s: %w", path, err)
	}
	if art.Bytecode == "" {
		return nil, fmt.Errorf("contract artifact %s has no bytecode", path)
	}
	return &art, nil
}
