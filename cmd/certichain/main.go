package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"certichain/internal/platform/config"
	"certichain/internal/platform/logger"
	"certichain/internal/registry"
	"certichain/internal/registry/ethereum"
	"certichain/internal/registry/memory"
)

const programName = "certichain"

var globalFlags = struct {
	debug bool
	dev   bool
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Issue and verify certificates against the on-ledger registry",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		BoolVar(&globalFlags.dev, "dev", false, "use an in-process registry instead of a ledger node")

	rootCmd.AddCommand(deployCommand())
	rootCmd.AddCommand(issueCommand())
	rootCmd.AddCommand(verifyCommand())

	if err := rootCmd.Execute(); err != nil {
		// NOTE: cobra has already displayed the error
		os.Exit(1)
	}
}

func commonRun() (config.Config, *slog.Logger) {
	cfg := config.FromEnv()
	if globalFlags.dev {
		cfg.DevMode = true
	}
	return cfg, logger.New(globalFlags.debug)
}

// newRegistry connects to the configured ledger, or hands back an empty
// in-process registry in dev mode.
func newRegistry(ctx context.Context, cfg config.Config, log *slog.Logger) (registry.Client, func(), error) {
	if cfg.DevMode {
		log.Warn("dev mode: using in-process registry, records are not durable")
		return memory.New(), func() {}, nil
	}
	contractAddr, err := cfg.RegistryAddress()
	if err != nil {
		return nil, nil, err
	}
	client, err := ethereum.Dial(ctx, cfg.RPCURL, contractAddr, cfg.PrivateKey, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect registry: %w", err)
	}
	return client, client.Close, nil
}
