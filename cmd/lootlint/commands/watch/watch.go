// Package watch implements the watch command.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/internal/cmdutil"
	"github.com/arthur-debert/lootlint/pkg/lint"
	"github.com/arthur-debert/lootlint/pkg/output"
	"github.com/arthur-debert/lootlint/pkg/watcher"
	"github.com/spf13/cobra"
)

// NewCommand creates the watch command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: MsgShort,
		Long:  MsgLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Settings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmdutil.NoColor(cmd))
			markdown, _ := cmd.Flags().GetBool("markdown")
			run := func() {
				report, err := lint.Run(settings)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "check failed: %v\n", err)
					return
				}
				if markdown {
					_ = renderer.RenderMarkdown(report)
				} else {
					_ = renderer.Render(report)
				}
			}
			run()

			paths := []string{settings.DataDir}
			if settings.PluginsFile != "" {
				paths = append(paths, settings.PluginsFile)
			}

			debounce, _ := cmd.Flags().GetDuration("debounce")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = watcher.Watch(ctx, paths, debounce, run)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmdutil.RegisterSettingsFlags(cmd)
	cmd.Flags().Bool("markdown", false, MsgFlagMarkdown)
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, MsgFlagDebounce)
	return cmd
}
