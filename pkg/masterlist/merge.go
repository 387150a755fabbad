package masterlist

import (
	"strings"

	"github.com/arthur-debert/lootlint/pkg/logging"
)

// Merge overlays a userlist onto a masterlist and returns a new list.
// Neither input is modified. The merge is additive: userlist data
// extends masterlist data rather than replacing it, except that a
// userlist group assignment overrides the masterlist's and dirty/clean
// records with a matching CRC are replaced. Everything that came from
// the userlist is marked FromUserlist so diagnostics can attribute it.
func Merge(master, user *List) *List {
	logger := logging.GetLogger("masterlist")

	merged := &List{
		BashTags: append([]string(nil), master.BashTags...),
		Globals:  append([]Message(nil), master.Globals...),
		Plugins:  make([]PluginEntry, 0, len(master.Plugins)),
	}
	for _, entry := range master.Plugins {
		merged.Plugins = append(merged.Plugins, copyEntry(entry))
	}
	if user == nil {
		return merged
	}

	for _, tag := range user.BashTags {
		if !containsFold(merged.BashTags, tag) {
			merged.BashTags = append(merged.BashTags, tag)
		}
	}
	for _, msg := range user.Globals {
		if !containsMessage(merged.Globals, msg) {
			msg.FromUserlist = true
			merged.Globals = append(merged.Globals, msg)
		}
	}

	// Entries match by name, case-insensitively. A regex entry only
	// matches an entry with the identical pattern.
	index := make(map[string]int, len(merged.Plugins))
	for i, entry := range merged.Plugins {
		index[strings.ToLower(entry.Name)] = i
	}
	added := 0
	for _, userEntry := range user.Plugins {
		if i, ok := index[strings.ToLower(userEntry.Name)]; ok {
			mergeEntry(&merged.Plugins[i], userEntry)
			continue
		}
		entry := copyEntry(userEntry)
		markUserlist(&entry)
		index[strings.ToLower(entry.Name)] = len(merged.Plugins)
		merged.Plugins = append(merged.Plugins, entry)
		added++
	}

	logger.Debug().
		Int("master_plugins", len(master.Plugins)).
		Int("user_plugins", len(user.Plugins)).
		Int("added", added).
		Msg("merged userlist into masterlist")
	return merged
}

func mergeEntry(base *PluginEntry, user PluginEntry) {
	if user.Group != "" {
		base.Group = user.Group
	}
	if !user.Enabled {
		base.Enabled = false
	}
	for _, msg := range user.Messages {
		if !containsMessage(base.Messages, msg) {
			msg.FromUserlist = true
			base.Messages = append(base.Messages, msg)
		}
	}
	base.After = mergeFiles(base.After, user.After)
	base.Req = mergeFiles(base.Req, user.Req)
	base.Inc = mergeFiles(base.Inc, user.Inc)
	for _, tag := range user.Tags {
		if !containsTag(base.Tags, tag.Name) {
			base.Tags = append(base.Tags, tag)
		}
	}
	base.Dirty = mergeCleanData(base.Dirty, user.Dirty)
	base.Clean = mergeCleanData(base.Clean, user.Clean)
}

// mergeFiles appends user file records whose names are not already
// present, matching case-insensitively.
func mergeFiles(base, user []File) []File {
	for _, f := range user {
		found := false
		for _, existing := range base {
			if strings.EqualFold(existing.Name, f.Name) {
				found = true
				break
			}
		}
		if !found {
			base = append(base, f)
		}
	}
	return base
}

// mergeCleanData keys records by CRC: a user record replaces the base
// record with the same checksum, otherwise it is appended.
func mergeCleanData(base, user []CleanData) []CleanData {
	for _, c := range user {
		c.FromUserlist = true
		replaced := false
		for i, existing := range base {
			if existing.CRC == c.CRC {
				base[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, c)
		}
	}
	return base
}

func copyEntry(entry PluginEntry) PluginEntry {
	entry.After = append([]File(nil), entry.After...)
	entry.Req = append([]File(nil), entry.Req...)
	entry.Inc = append([]File(nil), entry.Inc...)
	entry.Tags = append([]Tag(nil), entry.Tags...)
	entry.Messages = append([]Message(nil), entry.Messages...)
	entry.Dirty = append([]CleanData(nil), entry.Dirty...)
	entry.Clean = append([]CleanData(nil), entry.Clean...)
	return entry
}

func markUserlist(entry *PluginEntry) {
	for i := range entry.Messages {
		entry.Messages[i].FromUserlist = true
	}
	for i := range entry.Dirty {
		entry.Dirty[i].FromUserlist = true
	}
	for i := range entry.Clean {
		entry.Clean[i].FromUserlist = true
	}
}

func containsMessage(msgs []Message, msg Message) bool {
	for _, m := range msgs {
		if sameMessage(m, msg) {
			return true
		}
	}
	return false
}

func containsTag(tags []Tag, name string) bool {
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
