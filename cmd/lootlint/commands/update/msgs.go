package update

// Message constants
const (
	MsgShort = "Download or update the masterlist for the configured game"
	MsgLong  = `Update clones the game's official masterlist repository into the
masterlist directory, or fast-forwards an existing clone to the latest
metadata. Use --all to update every known game at once.`

	MsgFlagAll = "Update the masterlists for all known games"
)
