package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"certichain/internal/registry/ethereum"
)

func deployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the registry contract and persist its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := commonRun()
			ctx := cmd.Context()

			if cfg.PrivateKey == "" {
				return fmt.Errorf("CERTICHAIN_PRIVATE_KEY is required to deploy")
			}

			art, err := ethereum.LoadArtifact(cfg.ContractArtifact)
			if err != nil {
				return err
			}

			address, err := ethereum.Deploy(ctx, cfg.RPCURL, cfg.PrivateKey, art, log)
			if err != nil {
				return err
			}
			if err := cfg.SaveRegistryAddress(address.Hex()); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Registry deployed at %s\n", address.Hex())
			fmt.Fprintf(os.Stdout, "Address saved to %s\n", cfg.AddressFile)
			return nil
		},
	}
}
