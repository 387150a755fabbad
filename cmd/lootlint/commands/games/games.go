// Package games implements the games command.
package games

import (
	"fmt"
	"text/tabwriter"

	gamereg "github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/updater"
	"github.com/spf13/cobra"
)

// NewCommand creates the games command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: MsgShort,
		Long:  MsgLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GAME\tLIGHT PLUGINS\tMASTERLIST")
			for _, g := range gamereg.All() {
				light := "-"
				if g.SupportsLight {
					min, max := g.LightFormIDRange()
					light = fmt.Sprintf("0x%03X-0x%03X", min, max)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, light, updater.RepoURL(g))
			}
			_ = w.Flush()
		},
	}
}
