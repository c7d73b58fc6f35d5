package main

import (
	"fmt"

	"github.com/spf13/cobra"

	neutralipc "github.com/neutralts/neutral-ipc-go"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the IPC server is reachable",
	Long: `Check sends a minimal render request and reports whether the Neutral
IPC server answered. Exit code 0 means the server is up.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := clientConfig()
		if err != nil {
			return err
		}
		if !neutralipc.Ping(cfg) {
			return fmt.Errorf("neutral IPC server at %s:%d is not responding", cfg.Host, cfg.Port)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "neutral IPC server at %s:%d is up\n", cfg.Host, cfg.Port)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
