package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <image>",
	Short: "Send an image to the gateway and print the solution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGatewayClient()
		if err != nil {
			return err
		}

		solution, err := client.Solve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("solve failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), solution)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
}
