// Package resolver evaluates merged metadata against an installed
// load order and produces the messages that apply to it, together
// with diagnostics for metadata that could not be evaluated.
package resolver

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/condition"
	"github.com/arthur-debert/lootlint/pkg/loadorder"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/arthur-debert/lootlint/pkg/masterlist"
	"github.com/arthur-debert/lootlint/pkg/plugins"
)

// Source records where a resolved message came from.
type Source string

const (
	// SourceMasterlist marks messages from the masterlist.
	SourceMasterlist Source = "masterlist"
	// SourceUserlist marks messages merged in from the userlist.
	SourceUserlist Source = "userlist"
	// SourceCheck marks messages produced by built-in plugin checks.
	SourceCheck Source = "check"
)

// ResolvedMessage is one message that applies to the current load
// order. Plugin is empty for global messages.
type ResolvedMessage struct {
	Plugin   string
	Severity masterlist.MessageType
	Text     string
	Source   Source
}

// Diagnostic reports a metadata entry that could not be evaluated:
// an unparsable condition, a bad pattern, an unreadable header
// consulted by a condition. One bad entry never aborts the run.
type Diagnostic struct {
	Plugin string
	Detail string
	Err    error
}

func (d Diagnostic) String() string {
	if d.Plugin == "" {
		return fmt.Sprintf("%s: %v", d.Detail, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Plugin, d.Detail, d.Err)
}

// Options tune resolution.
type Options struct {
	// Language selects message content, e.g. "en". Empty means "en".
	Language string
	// IncludeInfo includes informational ("say") messages.
	IncludeInfo bool
	// PreferLiteral resolves a plugin's literal-name entry before any
	// regex entries that also match it.
	PreferLiteral bool
	// CheckRequirements reports required files that are missing.
	CheckRequirements bool
	// CheckIncompatibilities reports incompatible files that are
	// present.
	CheckIncompatibilities bool
}

// DefaultOptions are the settings the check command starts from.
func DefaultOptions() Options {
	return Options{
		Language:               "en",
		IncludeInfo:            true,
		PreferLiteral:          true,
		CheckRequirements:      true,
		CheckIncompatibilities: true,
	}
}

type resolver struct {
	list *masterlist.List
	ctx  *loadorder.Context
	opts Options

	messages    []ResolvedMessage
	diagnostics []Diagnostic
	exprs       map[string]condition.Expr
}

// Resolve merges user into master and evaluates the result against
// the load order. user may be nil. Messages come back grouped per
// plugin in load-order position, global messages first.
func Resolve(master, user *masterlist.List, ctx *loadorder.Context, opts Options) ([]ResolvedMessage, []Diagnostic) {
	logger := logging.GetLogger("resolver")
	if opts.Language == "" {
		opts.Language = "en"
	}

	r := &resolver{
		list:  masterlist.Merge(master, user),
		ctx:   ctx,
		opts:  opts,
		exprs: map[string]condition.Expr{},
	}

	for _, msg := range r.list.Globals {
		r.resolveMessage("", msg)
	}
	for _, plugin := range ctx.Plugins() {
		r.resolvePlugin(plugin)
	}

	logger.Debug().
		Int("messages", len(r.messages)).
		Int("diagnostics", len(r.diagnostics)).
		Msg("resolution complete")
	return r.messages, r.diagnostics
}

// resolvePlugin emits everything that applies to one installed
// plugin: its metadata entries' messages, dirty/clean info,
// requirement and incompatibility findings, then the built-in header
// checks.
func (r *resolver) resolvePlugin(plugin string) {
	header, headerErr := r.ctx.Header(plugin)

	for _, entry := range r.matchingEntries(plugin) {
		if entry.Condition != "" {
			ok, err := r.eval(entry.Condition)
			if err != nil {
				r.diag(plugin, fmt.Sprintf("entry condition %q", entry.Condition), err)
				continue
			}
			if !ok {
				continue
			}
		}

		for _, msg := range entry.Messages {
			r.resolveMessage(plugin, msg)
		}
		if header != nil {
			r.resolveDirty(plugin, entry, header.CRC)
			r.resolveClean(plugin, entry, header.CRC)
		}
		if r.opts.CheckRequirements {
			r.resolveRequirements(plugin, entry)
		}
		if r.opts.CheckIncompatibilities {
			r.resolveIncompatibilities(plugin, entry)
		}
	}

	if headerErr != nil {
		r.emit(plugin, masterlist.TypeError,
			fmt.Sprintf("Could not read the plugin header: %v.", headerErr), SourceCheck)
		return
	}
	r.checkLightFormIDs(plugin, header)
}

// matchingEntries collects the enabled metadata entries whose name
// matches the plugin, literal entries first when PreferLiteral is
// set. A pattern that fails to compile yields a diagnostic and skips
// that entry only.
func (r *resolver) matchingEntries(plugin string) []masterlist.PluginEntry {
	var literals, regexes, ordered []masterlist.PluginEntry
	for _, entry := range r.list.Plugins {
		if !entry.Enabled {
			continue
		}
		if entry.IsRegex() {
			re, err := condition.CompileNamePattern(entry.Name)
			if err != nil {
				r.diag(plugin, fmt.Sprintf("entry name pattern %q", entry.Name), err)
				continue
			}
			if re.MatchString(plugin) {
				regexes = append(regexes, entry)
				ordered = append(ordered, entry)
			}
			continue
		}
		if strings.EqualFold(entry.Name, plugin) {
			literals = append(literals, entry)
			ordered = append(ordered, entry)
		}
	}
	if r.opts.PreferLiteral {
		return append(literals, regexes...)
	}
	return ordered
}

func (r *resolver) resolveMessage(plugin string, msg masterlist.Message) {
	if msg.Type == masterlist.TypeSay && !r.opts.IncludeInfo {
		return
	}
	if msg.Condition != "" {
		ok, err := r.eval(msg.Condition)
		if err != nil {
			r.diag(plugin, fmt.Sprintf("message condition %q", msg.Condition), err)
			return
		}
		if !ok {
			return
		}
	}
	r.emit(plugin, msg.Type, msg.Text(r.opts.Language), messageSource(msg))
}

func (r *resolver) resolveDirty(plugin string, entry masterlist.PluginEntry, crc uint32) {
	for _, d := range entry.Dirty {
		if d.CRC != crc {
			continue
		}
		text := fmt.Sprintf("This plugin is dirty (%s).", countsText(d))
		if d.Util != "" {
			text += fmt.Sprintf(" Clean it with %s.", d.Util)
		}
		if d.Detail != "" {
			text += " " + d.Detail
		}
		r.emit(plugin, masterlist.TypeWarn, text, cleanDataSource(d))
	}
}

func (r *resolver) resolveClean(plugin string, entry masterlist.PluginEntry, crc uint32) {
	if !r.opts.IncludeInfo {
		return
	}
	for _, c := range entry.Clean {
		if c.CRC != crc {
			continue
		}
		text := "This plugin is verified clean."
		if c.Util != "" {
			text = fmt.Sprintf("This plugin is verified clean by %s.", c.Util)
		}
		r.emit(plugin, masterlist.TypeSay, text, cleanDataSource(c))
	}
}

// resolveRequirements reports required files that are not installed.
// A requirement's own condition gates whether it applies at all.
func (r *resolver) resolveRequirements(plugin string, entry masterlist.PluginEntry) {
	for _, req := range entry.Req {
		if req.Condition != "" {
			ok, err := r.eval(req.Condition)
			if err != nil {
				r.diag(plugin, fmt.Sprintf("requirement condition %q", req.Condition), err)
				continue
			}
			if !ok {
				continue
			}
		}
		if r.fileInstalled(req.Name) {
			continue
		}
		text := fmt.Sprintf("This plugin requires %q, which is missing.", req.DisplayName())
		if req.Detail != "" {
			text += " " + req.Detail
		}
		r.emit(plugin, masterlist.TypeError, text, SourceMasterlist)
	}
}

// resolveIncompatibilities reports incompatible files that are
// present. For plugins "present" means active; a deactivated plugin
// does not conflict.
func (r *resolver) resolveIncompatibilities(plugin string, entry masterlist.PluginEntry) {
	for _, inc := range entry.Inc {
		if inc.Condition != "" {
			ok, err := r.eval(inc.Condition)
			if err != nil {
				r.diag(plugin, fmt.Sprintf("incompatibility condition %q", inc.Condition), err)
				continue
			}
			if !ok {
				continue
			}
		}
		present := false
		if plugins.IsPluginFile(inc.Name) {
			present = r.ctx.IsPluginActive(inc.Name)
		} else {
			present = r.ctx.FileExists(inc.Name)
		}
		if !present {
			continue
		}
		text := fmt.Sprintf("This plugin is incompatible with %q, which is present.", inc.DisplayName())
		if inc.Detail != "" {
			text += " " + inc.Detail
		}
		r.emit(plugin, masterlist.TypeWarn, text, SourceMasterlist)
	}
}

// checkLightFormIDs verifies that a light-flagged plugin only defines
// new records whose object indices fit the game's valid range.
func (r *resolver) checkLightFormIDs(plugin string, header *plugins.Header) {
	if header == nil || !header.IsLight {
		return
	}
	game := r.ctx.Game()
	if !game.SupportsLight {
		r.emit(plugin, masterlist.TypeError,
			fmt.Sprintf("This is a light plugin, but %s does not support light plugins.", game.Name),
			SourceCheck)
		return
	}
	min, max := game.LightFormIDRange()
	ownIndex := uint32(len(header.Masters))
	bad := 0
	for _, fid := range header.FormIDs {
		if fid>>24 != ownIndex {
			// Override of another plugin's record, not a new one.
			continue
		}
		// The object index is the low 24 bits; the game range only
		// bounds how much of it a light plugin may use.
		obj := fid & 0xFFFFFF
		if obj < min || obj > max {
			bad++
		}
	}
	if bad > 0 {
		r.emit(plugin, masterlist.TypeError,
			fmt.Sprintf("This light plugin defines %d record(s) with FormIDs outside the valid range (0x%03X-0x%03X). The plugin cannot be loaded as a light plugin.",
				bad, min, max),
			SourceCheck)
	}
}

// fileInstalled reports whether a required file is installed: any
// present file satisfies a requirement, active or not.
func (r *resolver) fileInstalled(name string) bool {
	if condition.IsPattern(name) {
		matches, err := r.ctx.GlobPaths(name)
		if err != nil {
			return false
		}
		return len(matches) > 0
	}
	return r.ctx.FileExists(name)
}

// eval parses (memoized) and evaluates one condition string.
func (r *resolver) eval(src string) (bool, error) {
	expr, ok := r.exprs[src]
	if !ok {
		var err error
		expr, err = condition.Parse(src)
		if err != nil {
			return false, err
		}
		r.exprs[src] = expr
	}
	return condition.Evaluate(expr, r.ctx)
}

func (r *resolver) emit(plugin string, severity masterlist.MessageType, text string, source Source) {
	r.messages = append(r.messages, ResolvedMessage{
		Plugin:   plugin,
		Severity: severity,
		Text:     text,
		Source:   source,
	})
}

func (r *resolver) diag(plugin, detail string, err error) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Plugin: plugin, Detail: detail, Err: err})
}

func messageSource(msg masterlist.Message) Source {
	if msg.FromUserlist {
		return SourceUserlist
	}
	return SourceMasterlist
}

func cleanDataSource(c masterlist.CleanData) Source {
	if c.FromUserlist {
		return SourceUserlist
	}
	return SourceMasterlist
}

// countsText formats dirty-edit counts, e.g. "5 ITM, 2 UDR, 1 deleted
// navmesh".
func countsText(d masterlist.CleanData) string {
	var parts []string
	if d.ITM > 0 {
		parts = append(parts, fmt.Sprintf("%d ITM", d.ITM))
	}
	if d.UDR > 0 {
		parts = append(parts, fmt.Sprintf("%d UDR", d.UDR))
	}
	if d.NAV > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted navmesh(es)", d.NAV))
	}
	if len(parts) == 0 {
		return "unknown edits"
	}
	return strings.Join(parts, ", ")
}
