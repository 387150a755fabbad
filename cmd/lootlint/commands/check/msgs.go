package check

// Message constants
const (
	MsgShort = "Check the load order and print all matching messages"
	MsgLong  = `Check reads the active load order, evaluates masterlist and userlist
metadata against it, and prints every message that applies: warnings,
errors, dirty plugin reports, missing requirements, incompatibilities,
and light plugins with out-of-range FormIDs.`

	MsgFlagMarkdown = "Render the report as markdown"
	MsgFlagStrict   = "Exit non-zero when any warning or error is reported"
)
