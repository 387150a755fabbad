// Package commands builds the lootlint command tree.
package commands

import (
	"fmt"

	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/check"
	gamescmd "github.com/arthur-debert/lootlint/cmd/lootlint/commands/games"
	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/update"
	"github.com/arthur-debert/lootlint/cmd/lootlint/commands/watch"
	"github.com/arthur-debert/lootlint/internal/version"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "lootlint",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().String("config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().Bool("no-color", false, MsgFlagNoColor)

	rootCmd.AddCommand(check.NewCommand())
	rootCmd.AddCommand(update.NewCommand())
	rootCmd.AddCommand(watch.NewCommand())
	rootCmd.AddCommand(gamescmd.NewCommand())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lootlint version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
		},
	}
}
