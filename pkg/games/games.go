// Package games holds the registry of games LOOT publishes masterlists
// for, together with the per-game facts lootlint needs: where the
// masterlist lives, how plugin records are laid out, and which FormID
// object indices a light plugin may use.
package games

import (
	"sort"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/errors"
)

// RecordLayout identifies the on-disk plugin record format family.
type RecordLayout int

const (
	// LayoutTES3 is the Morrowind format. No FormIDs, no flags of interest.
	LayoutTES3 RecordLayout = iota
	// LayoutTES4 is the Oblivion/Fallout3/FalloutNV format with 20-byte
	// record headers.
	LayoutTES4
	// LayoutLate is the Skyrim-and-later format with 24-byte record
	// headers. The only family with light plugins.
	LayoutLate
)

// Game describes one LOOT-supported game.
type Game struct {
	// Name is the human-readable game name, also the lookup key.
	Name string

	// MasterlistRepo is the name of the masterlist's GitHub repository
	// under the loot organization (not the full URL).
	MasterlistRepo string

	// Folder is the name of LOOT's local data folder for this game.
	Folder string

	// Layout selects the plugin record format.
	Layout RecordLayout

	// SupportsLight reports whether the game has light plugins at all.
	SupportsLight bool

	// LightIndexMin and LightIndexMax bound the valid FormID object
	// index range for light plugins. The range differs per game and has
	// changed across game patches, so it lives here rather than at the
	// check site.
	LightIndexMin uint32
	LightIndexMax uint32
}

// LightFormIDRange returns the valid object-index range for light
// plugins of this game.
func (g Game) LightFormIDRange() (uint32, uint32) {
	return g.LightIndexMin, g.LightIndexMax
}

// registry lists the supported games. Repo and folder names follow
// LOOT's settings.toml; light ranges follow the esplugin constants for
// each game family.
var registry = []Game{
	{Name: "Morrowind", MasterlistRepo: "morrowind", Folder: "Morrowind", Layout: LayoutTES3},
	{Name: "Oblivion", MasterlistRepo: "oblivion", Folder: "Oblivion", Layout: LayoutTES4},
	{Name: "Nehrim", MasterlistRepo: "oblivion", Folder: "Nehrim", Layout: LayoutTES4},
	{Name: "Skyrim", MasterlistRepo: "skyrim", Folder: "Skyrim", Layout: LayoutLate},
	{Name: "Enderal", MasterlistRepo: "skyrim", Folder: "Enderal", Layout: LayoutLate},
	{Name: "Skyrim Special Edition", MasterlistRepo: "skyrimse", Folder: "Skyrim Special Edition",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x800, LightIndexMax: 0xFFF},
	{Name: "Skyrim VR", MasterlistRepo: "skyrimvr", Folder: "Skyrim VR",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x800, LightIndexMax: 0xFFF},
	{Name: "Enderal Special Edition", MasterlistRepo: "enderal", Folder: "Enderal Special Edition",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x800, LightIndexMax: 0xFFF},
	{Name: "Fallout 3", MasterlistRepo: "fallout3", Folder: "Fallout3", Layout: LayoutTES4},
	{Name: "Fallout New Vegas", MasterlistRepo: "falloutnv", Folder: "FalloutNV", Layout: LayoutTES4},
	{Name: "Fallout 4", MasterlistRepo: "fallout4", Folder: "Fallout4",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x001, LightIndexMax: 0xFFF},
	{Name: "Fallout 4 VR", MasterlistRepo: "fallout4vr", Folder: "Fallout4VR",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x001, LightIndexMax: 0xFFF},
	{Name: "Starfield", MasterlistRepo: "starfield", Folder: "Starfield",
		Layout: LayoutLate, SupportsLight: true, LightIndexMin: 0x000, LightIndexMax: 0xFFF},
}

// Lookup finds a game by name, case-insensitively.
func Lookup(name string) (Game, error) {
	for _, g := range registry {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return Game{}, errors.Newf(errors.ErrGameUnknown, "unknown game %q", name)
}

// Names returns the supported game names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, g := range registry {
		names = append(names, g.Name)
	}
	sort.Strings(names)
	return names
}

// All returns the full registry in declaration order.
func All() []Game {
	out := make([]Game, len(registry))
	copy(out, registry)
	return out
}
