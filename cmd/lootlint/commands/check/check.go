// Package check implements the check command.
package check

import (
	"fmt"

	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/internal/cmdutil"
	"github.com/arthur-debert/lootlint/pkg/lint"
	"github.com/arthur-debert/lootlint/pkg/output"
	"github.com/spf13/cobra"
)

// NewCommand creates the check command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: MsgShort,
		Long:  MsgLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Settings(cmd)
			if err != nil {
				return err
			}

			report, err := lint.Run(settings)
			if err != nil {
				return err
			}

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmdutil.NoColor(cmd))
			markdown, _ := cmd.Flags().GetBool("markdown")
			if markdown {
				err = renderer.RenderMarkdown(report)
			} else {
				err = renderer.Render(report)
			}
			if err != nil {
				return err
			}

			if strict, _ := cmd.Flags().GetBool("strict"); strict && report.HasProblems() {
				return fmt.Errorf("load order has warnings or errors")
			}
			return nil
		},
	}

	cmdutil.RegisterSettingsFlags(cmd)
	cmd.Flags().Bool("markdown", false, MsgFlagMarkdown)
	cmd.Flags().Bool("strict", false, MsgFlagStrict)
	return cmd
}
