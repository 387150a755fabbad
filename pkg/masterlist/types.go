// Package masterlist models LOOT masterlist and userlist documents:
// per-plugin metadata entries carrying messages, cleaning data, tags
// and condition strings.
package masterlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/condition"
	"gopkg.in/yaml.v3"
)

// MessageType is the severity of a list message.
type MessageType string

const (
	TypeSay   MessageType = "say"
	TypeWarn  MessageType = "warn"
	TypeError MessageType = "error"
)

// List is one parsed masterlist or userlist document.
type List struct {
	BashTags []string      `yaml:"bash_tags"`
	Globals  []Message     `yaml:"globals"`
	Plugins  []PluginEntry `yaml:"plugins"`
}

// PluginEntry is one plugin's metadata record. The name may be a regex
// pattern matching several installed plugins; either way matching is
// case-insensitive.
type PluginEntry struct {
	Name      string
	Group     string
	Enabled   bool
	Condition string
	After     []File
	Req       []File
	Inc       []File
	Tags      []Tag
	Messages  []Message
	Dirty     []CleanData
	Clean     []CleanData
}

// IsRegex reports whether the entry's name is a pattern rather than a
// literal plugin name.
func (p *PluginEntry) IsRegex() bool {
	return condition.IsPattern(p.Name)
}

// Message is one localized, optionally conditioned message.
type Message struct {
	Type      MessageType
	Content   []MessageContent
	Condition string
	Subs      []string

	// FromUserlist marks data merged in from the userlist.
	FromUserlist bool
}

// MessageContent is one language variant of a message.
type MessageContent struct {
	Text string `yaml:"text"`
	Lang string `yaml:"lang"`
}

// Text returns the message text for the requested language, falling
// back to the first content block, with substitution parameters
// applied.
func (m *Message) Text(lang string) string {
	if len(m.Content) == 0 {
		return ""
	}
	text := m.Content[0].Text
	for _, c := range m.Content {
		if strings.EqualFold(c.Lang, lang) {
			text = c.Text
			break
		}
	}
	for i, sub := range m.Subs {
		text = strings.ReplaceAll(text, "{"+strconv.Itoa(i)+"}", sub)
	}
	return text
}

// sameMessage compares messages ignoring provenance, for merge
// deduplication.
func sameMessage(a, b Message) bool {
	if a.Type != b.Type || a.Condition != b.Condition ||
		len(a.Content) != len(b.Content) || len(a.Subs) != len(b.Subs) {
		return false
	}
	for i := range a.Content {
		if a.Content[i] != b.Content[i] {
			return false
		}
	}
	for i := range a.Subs {
		if a.Subs[i] != b.Subs[i] {
			return false
		}
	}
	return true
}

// File is a req/inc/after reference: a plain file name or a detailed
// record with display text and a gating condition.
type File struct {
	Name      string `yaml:"name"`
	Display   string `yaml:"display"`
	Detail    string `yaml:"detail"`
	Condition string `yaml:"condition"`
}

// DisplayName returns the name to show users.
func (f File) DisplayName() string {
	if f.Display != "" {
		return f.Display
	}
	return f.Name
}

// Tag is a Bash Tag suggestion, possibly conditioned.
type Tag struct {
	Name      string `yaml:"name"`
	Condition string `yaml:"condition"`
}

// CleanData is checksum-keyed dirty or clean information. The counts
// are only populated for dirty info.
type CleanData struct {
	CRC    uint32
	Util   string
	ITM    int
	UDR    int
	NAV    int
	Detail string

	FromUserlist bool
}

// --- YAML decoding -------------------------------------------------
//
// Several masterlist fields are union-typed in YAML (a bare string or
// a mapping), so they decode through custom unmarshallers that
// validate required fields up front.

type pluginEntryYAML struct {
	Name      string    `yaml:"name"`
	Group     string    `yaml:"group"`
	Enabled   *bool     `yaml:"enabled"`
	Condition string    `yaml:"condition"`
	After     []File    `yaml:"after"`
	Req       []File    `yaml:"req"`
	Inc       []File    `yaml:"inc"`
	Tags      []Tag     `yaml:"tag"`
	Messages  []Message `yaml:"msg"`
	Dirty     []CleanData `yaml:"dirty"`
	Clean     []CleanData `yaml:"clean"`
	URL       yaml.Node   `yaml:"url"`
}

func (p *PluginEntry) UnmarshalYAML(node *yaml.Node) error {
	var aux pluginEntryYAML
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.Name == "" {
		return fmt.Errorf("line %d: plugin entry missing required field %q", node.Line, "name")
	}
	p.Name = aux.Name
	p.Group = aux.Group
	p.Enabled = aux.Enabled == nil || *aux.Enabled
	p.Condition = aux.Condition
	p.After = aux.After
	p.Req = aux.Req
	p.Inc = aux.Inc
	p.Tags = aux.Tags
	p.Messages = aux.Messages
	p.Dirty = aux.Dirty
	p.Clean = aux.Clean
	return nil
}

type messageYAML struct {
	Type      string    `yaml:"type"`
	Content   yaml.Node `yaml:"content"`
	Condition string    `yaml:"condition"`
	Subs      []string  `yaml:"subs"`
}

func (m *Message) UnmarshalYAML(node *yaml.Node) error {
	var aux messageYAML
	if err := node.Decode(&aux); err != nil {
		return err
	}
	switch MessageType(aux.Type) {
	case TypeSay, TypeWarn, TypeError:
		m.Type = MessageType(aux.Type)
	default:
		return fmt.Errorf("line %d: invalid message type %q", node.Line, aux.Type)
	}
	switch aux.Content.Kind {
	case yaml.ScalarNode:
		var text string
		if err := aux.Content.Decode(&text); err != nil {
			return err
		}
		m.Content = []MessageContent{{Text: text}}
	case yaml.SequenceNode:
		if err := aux.Content.Decode(&m.Content); err != nil {
			return err
		}
	case 0:
		return fmt.Errorf("line %d: message missing required field %q", node.Line, "content")
	default:
		return fmt.Errorf("line %d: message content must be a string or list", node.Line)
	}
	if len(m.Content) == 0 {
		return fmt.Errorf("line %d: message content is empty", node.Line)
	}
	m.Condition = aux.Condition
	m.Subs = aux.Subs
	return nil
}

func (f *File) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&f.Name)
	}
	type fileAlias File
	var aux fileAlias
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.Name == "" {
		return fmt.Errorf("line %d: file record missing required field %q", node.Line, "name")
	}
	*f = File(aux)
	return nil
}

func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&t.Name)
	}
	type tagAlias Tag
	var aux tagAlias
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.Name == "" {
		return fmt.Errorf("line %d: tag record missing required field %q", node.Line, "name")
	}
	*t = Tag(aux)
	return nil
}

type cleanDataYAML struct {
	CRC    yaml.Node `yaml:"crc"`
	Util   string    `yaml:"util"`
	ITM    int       `yaml:"itm"`
	UDR    int       `yaml:"udr"`
	NAV    int       `yaml:"nav"`
	Detail string    `yaml:"detail"`
	Info   string    `yaml:"info"`
}

func (c *CleanData) UnmarshalYAML(node *yaml.Node) error {
	var aux cleanDataYAML
	if err := node.Decode(&aux); err != nil {
		return err
	}
	crc, err := decodeCRC(&aux.CRC)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	c.CRC = crc
	c.Util = aux.Util
	c.ITM = aux.ITM
	c.UDR = aux.UDR
	c.NAV = aux.NAV
	// Older lists call this field "info".
	c.Detail = aux.Detail
	if c.Detail == "" {
		c.Detail = aux.Info
	}
	return nil
}

// decodeCRC accepts the checksum forms masterlists use: a YAML
// integer (usually 0x-prefixed) or a bare hex string.
func decodeCRC(node *yaml.Node) (uint32, error) {
	if node.Kind == 0 {
		return 0, fmt.Errorf("dirty/clean info missing required field %q", "crc")
	}
	var asInt uint32
	if err := node.Decode(&asInt); err == nil {
		return asInt, nil
	}
	var asString string
	if err := node.Decode(&asString); err != nil {
		return 0, fmt.Errorf("invalid crc value")
	}
	text := strings.TrimPrefix(strings.TrimPrefix(asString, "0x"), "0X")
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid crc value %q", asString)
	}
	return uint32(v), nil
}
