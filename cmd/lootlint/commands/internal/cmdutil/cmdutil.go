// Package cmdutil holds the flag plumbing shared by the lootlint
// subcommands.
package cmdutil

import (
	"github.com/arthur-debert/lootlint/pkg/config"
	"github.com/spf13/cobra"
)

// RegisterSettingsFlags adds the flags that override configuration
// file settings.
func RegisterSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("game", "", `Game to check (e.g. "Skyrim Special Edition")`)
	cmd.Flags().String("data-dir", "", "Game data directory")
	cmd.Flags().String("plugins-file", "", "Active plugin list (plugins.txt)")
	cmd.Flags().String("masterlist", "", "Masterlist file (defaults to the managed clone)")
	cmd.Flags().String("userlist", "", "Userlist file")
	cmd.Flags().String("ignore-file", "", "Ignore-pattern file")
	cmd.Flags().String("language", "", "Message language code")
	cmd.Flags().Bool("no-info", false, "Hide informational messages")
	cmd.Flags().Bool("no-cache", false, "Disable the plugin header cache")
}

// Settings loads the configuration and applies any flag overrides.
func Settings(cmd *cobra.Command) (*config.Settings, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	apply := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	apply("game", &settings.Game)
	apply("data-dir", &settings.DataDir)
	apply("plugins-file", &settings.PluginsFile)
	apply("masterlist", &settings.Masterlist)
	apply("userlist", &settings.Userlist)
	apply("ignore-file", &settings.IgnoreFile)
	apply("language", &settings.Language)
	if b, _ := flags.GetBool("no-info"); b {
		settings.IncludeInfo = false
	}
	if b, _ := flags.GetBool("no-cache"); b {
		settings.HeaderCache = false
	}
	return settings, nil
}

// NoColor reports the persistent --no-color flag.
func NoColor(cmd *cobra.Command) bool {
	b, _ := cmd.Flags().GetBool("no-color")
	return b
}
