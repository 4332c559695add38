package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"pingtrend/internal/netinfo"
)

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List network interfaces and the default gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ifaces, err := netinfo.Interfaces()
			if err != nil {
				return err
			}

			cell := lipgloss.NewStyle().PaddingRight(2)
			tbl := table.New().
				Border(lipgloss.HiddenBorder()).
				BorderTop(false).
				BorderBottom(false).
				BorderLeft(false).
				BorderRight(false).
				BorderHeader(false).
				BorderColumn(false).
				StyleFunc(func(_, _ int) lipgloss.Style { return cell }).
				Headers("NAME", "STATE", "ADDRESSES")
			for _, iface := range ifaces {
				state := "down"
				if iface.Up {
					state = "up"
				}
				if iface.Loopback {
					state += ",loopback"
				}
				tbl.Row(iface.Name, state, strings.Join(iface.Addresses, " "))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tbl.Render())

			if gw, err := netinfo.DefaultGateway(); err == nil {
				fmt.Fprintf(out, "\ndefault gateway: %s\n", gw)
			} else {
				fmt.Fprintf(out, "\ndefault gateway: unknown (%v)\n", err)
			}
			return nil
		},
	}
}
