package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pingtrend %s\n", version)
		},
	}
}
