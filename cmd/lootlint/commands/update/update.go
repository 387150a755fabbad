// Package update implements the update command.
package update

import (
	"fmt"

	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/internal/cmdutil"
	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/updater"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewCommand creates the update command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: MsgShort,
		Long:  MsgLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdutil.Settings(cmd)
			if err != nil {
				return err
			}

			u := &updater.Updater{
				BaseDir: settings.MasterlistDir,
				Branch:  settings.MasterlistBranch,
			}

			all, _ := cmd.Flags().GetBool("all")
			targets := games.All()
			if !all {
				game, err := settings.GameSpec()
				if err != nil {
					return err
				}
				targets = []games.Game{game}
			}

			var failed int
			for _, game := range targets {
				if err := updateOne(cmd, u, game); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d masterlist update(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().String("game", "", `Game to update (e.g. "Skyrim Special Edition")`)
	cmd.Flags().Bool("all", false, MsgFlagAll)
	return cmd
}

func updateOne(cmd *cobra.Command, u *updater.Updater, game games.Game) error {
	spinner, _ := pterm.DefaultSpinner.
		WithWriter(cmd.OutOrStdout()).
		Start("Updating " + game.Name)

	changed, err := u.Update(game)
	if err != nil {
		spinner.Fail(fmt.Sprintf("%s: %v", game.Name, err))
		return err
	}
	commit, err := u.Commit(game)
	if err != nil {
		spinner.Fail(fmt.Sprintf("%s: %v", game.Name, err))
		return err
	}

	state := "up to date"
	if changed {
		state = "updated"
	}
	spinner.Success(fmt.Sprintf("%s: %s at %s", game.Name, state, commit))
	return nil
}
