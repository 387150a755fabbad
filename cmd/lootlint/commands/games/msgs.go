package games

// Message constants
const (
	MsgShort = "List the games lootlint knows about"
	MsgLong  = `Games prints every supported game along with its masterlist
repository and whether it supports light plugins.`
)
