package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var gatewayURL string

var rootCmd = &cobra.Command{
	Use:   "snapctl",
	Short: "Screenshot solver overlay and gateway client",
	Long: `snapctl runs the desktop overlay that captures screenshots on a global
hotkey and forwards them to the inference gateway. It can also send a single
image or question to the gateway from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Gateway base URL (default: $GATEWAY_URL)")
}
