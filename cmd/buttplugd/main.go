package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

var rootCmd = &cobra.Command{
	Use:   "buttplugd",
	Short: "Buttplug protocol server",
	Long: `buttplugd speaks the Buttplug intimate-hardware control protocol
(versions 0 through 4) over a WebSocket connector, translating a single
negotiated client session into per-device commands against whatever
communication managers are registered.`,
	Version: formatVersion(version),
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("listen", "", "WebSocket listen address (default :12345)")
	rootCmd.PersistentFlags().String("device-config", "", "Path to a device configuration JSON file")
	rootCmd.PersistentFlags().String("user-config", "", "Path to a user device configuration overlay JSON file")
	rootCmd.PersistentFlags().Duration("max-ping-time", 0, "Ping watchdog period (0 disables)")
	rootCmd.PersistentFlags().Bool("allow-mode", false, "Restrict enumeration to allow-listed user device customizations")
	rootCmd.PersistentFlags().Bool("simulate", false, "Register a simulated communication manager instead of a real one")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
}
