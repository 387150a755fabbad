package commands

// Message constants
const (
	MsgRootShort = "A load-order linter for Bethesda games"
	MsgRootLong  = `lootlint checks an installed load order against LOOT masterlist and
userlist metadata: it evaluates each entry's conditions, reports dirty
and outdated plugins, missing requirements, incompatibilities, and
light plugins with out-of-range FormIDs.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default is $XDG_CONFIG_HOME/lootlint/lootlint.toml)"
	MsgFlagNoColor = "Disable colored output"
)
