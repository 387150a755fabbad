package watch

// Message constants
const (
	MsgShort = "Re-check the load order whenever it changes"
	MsgLong  = `Watch runs a check, then watches the game data directory (and the
active plugin list, when one is configured) and re-runs the check after
each settled burst of changes. Stop it with Ctrl-C.`

	MsgFlagMarkdown = "Render reports as markdown"
	MsgFlagDebounce = "How long to wait for the file system to settle"
)
