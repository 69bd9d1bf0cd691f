package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"
)

// OverlayRunner starts the desktop process. cmd/snapctl sets it, which keeps
// this package free of the display-server dependencies of the hotkey library.
var OverlayRunner func()

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Run the capture overlay",
	Long: `Registers the global shortcuts (cmd+h capture, cmd+b toggle, cmd+arrows
move) and serves the overlay event stream on OVERLAY_ADDR.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if OverlayRunner == nil {
			return errors.New("overlay is not available in this build")
		}
		if gatewayURL != "" {
			os.Setenv("GATEWAY_URL", gatewayURL)
		}
		mainthread.Init(OverlayRunner)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overlayCmd)
}
