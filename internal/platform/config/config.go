// Package config builds runtime configuration from environment variables so
// main stays lean. The one piece of persisted local state, the deployed
// registry address, lives in a plain text file written at deploy time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server and CLI need.
type Config struct {
	Addr             string
	PublicBaseURL    string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	RPCURL           string
	PrivateKey       string
	AddressFile      string
	ContractArtifact string

	PostgresDSN  string
	KafkaBrokers []string
	RedisURL     string

	JWTSigningKey string
	IssuerAPIKey  string

	RateLimitPerMinute int
	TrustProxyHeaders  bool
	DevMode            bool
}

// FromEnv reads configuration with safe development defaults.
func FromEnv() Config {
	return Config{
		Addr:               envOr("CERTICHAIN_ADDR", ":8080"),
		PublicBaseURL:      envOr("CERTICHAIN_PUBLIC_BASE_URL", "http://localhost:8080"),
		HTTPReadTimeout:    envDuration("CERTICHAIN_HTTP_READ_TIMEOUT", 0),
		HTTPWriteTimeout:   envDuration("CERTICHAIN_HTTP_WRITE_TIMEOUT", 0),
		RPCURL:             envOr("CERTICHAIN_RPC_URL", "http://127.0.0.1:8545"),
		PrivateKey:         os.Getenv("CERTICHAIN_PRIVATE_KEY"),
		AddressFile:        envOr("CERTICHAIN_ADDRESS_FILE", "deployed_address.txt"),
		ContractArtifact:   envOr("CERTICHAIN_CONTRACT_ARTIFACT", "artifacts/contracts/CertiChain.sol/CertiChain.json"),
		PostgresDSN:        os.Getenv("CERTICHAIN_POSTGRES_DSN"),
		KafkaBrokers:       splitList(os.Getenv("CERTICHAIN_KAFKA_BROKERS")),
		RedisURL:           os.Getenv("CERTICHAIN_REDIS_URL"),
		JWTSigningKey:      envOr("CERTICHAIN_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		IssuerAPIKey:       os.Getenv("CERTICHAIN_ISSUER_API_KEY"),
		RateLimitPerMinute: envInt("CERTICHAIN_RATE_LIMIT_PER_MINUTE", 60),
		TrustProxyHeaders:  os.Getenv("CERTICHAIN_TRUST_PROXY_HEADERS") == "true",
		DevMode:            os.Getenv("CERTICHAIN_DEV_MODE") == "true",
	}
}

// RegistryAddress reads the persisted contract address.
func (c Config) RegistryAddress() (string, error) {
	raw, err := os.ReadFile(c.AddressFile)
	if err != nil {
		return "", fmt.Errorf("read registry address from %s (deploy first): %w", c.AddressFile, err)
	}
	addr := strings.TrimSpace(string(raw))
	if addr == "" {
		return "", fmt.Errorf("registry address file %s is empty", c.AddressFile)
	}
	return addr, nil
}

// SaveRegistryAddress persists the contract address written at deploy time.
func (c Config) SaveRegistryAddress(address string) error {
	if err := os.WriteFile(c.AddressFile, []byte(address+"\n"), 0o644); err != nil {
		return fmt.Errorf("write registry address to %s: %w", c.AddressFile, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
