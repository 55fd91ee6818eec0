package cmd

import (
	"github.com/spf13/cobra"
)

const BinaryName = "vwd"

// NewRootCmd creates the root command for vwd. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   BinaryName,
		Short: "Vault Wars session chain and simulator",
		Long: `vwd runs the Vault Wars game session as a CometBFT ABCI application,
or plays a full game against Clawbot locally.

Examples:
  vwd start --home ~/.vaultwars --relayer relayer1
  vwd simulate --human-strategy fixed:vault --seed 7`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}
