// Package cli implements the pingtrend command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pingtrend/internal/app"
	"pingtrend/internal/config"
)

// rootCmd probes the targets and shows their latency trend
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pingtrend [flags] [target...]",
		Short: "Periodic multi-target latency probe with a live trend chart",
		Long: `pingtrend sends one echo probe to every target once per interval and
shows the latency trend live, optionally logging every sample to CSV.

Targets are given as "address" or "name=address". Without targets the
default gateway and google.com are probed.

  pingtrend --interval 10s Router=192.168.1.1 1.1.1.1
  pingtrend --ui plain --csv --csv-dir ./logs
  pingtrend --listen :8080 --chart-out trend.png`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(newVersionCmd(), newInterfacesCmd())
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), args)
	if err != nil {
		return err
	}

	// the dashboard needs a terminal; fall back to line output when piped
	if cfg.UI == config.UITerminal && !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.UI = config.UIPlain
	}

	session, err := app.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return session.Run(ctx)
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
