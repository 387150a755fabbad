package masterlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleList = `
bash_tags:
  - Delev
  - Relev
globals:
  - type: say
    content: 'Masterlist updated.'
plugins:
  - name: 'Foo.esp'
    group: 'Late Loaders'
    msg:
      - type: warn
        content: 'Foo is outdated.'
        condition: "version('Foo.esp', '2.0', <)"
      - type: say
        content:
          - text: 'Hello'
            lang: en
          - text: 'Bonjour'
            lang: fr
    req:
      - 'Skyrim.esm'
      - name: 'SKSE/skse64_loader.exe'
        display: 'SKSE64'
        condition: "active('Foo.esp')"
    inc:
      - 'Conflicting.esp'
    tag:
      - Delev
      - name: Relev
        condition: "file('Bar.esp')"
    dirty:
      - crc: 0x24F0E2A1
        util: 'SSEEdit v4.0.4'
        itm: 5
        udr: 2
        nav: 1
        detail: 'Run a cleaning pass.'
    clean:
      - crc: 0xDEADBEEF
        util: 'SSEEdit v4.0.4'
  - name: 'Unofficial.*Patch\.esp'
    msg:
      - type: say
        content: 'Thanks for patching.'
`

func TestLoadSampleList(t *testing.T) {
	list, err := Load(strings.NewReader(sampleList))
	require.NoError(t, err)

	assert.Equal(t, []string{"Delev", "Relev"}, list.BashTags)
	require.Len(t, list.Globals, 1)
	assert.Equal(t, TypeSay, list.Globals[0].Type)
	assert.Equal(t, "Masterlist updated.", list.Globals[0].Text("en"))

	require.Len(t, list.Plugins, 2)
	foo := list.Plugins[0]
	assert.Equal(t, "Foo.esp", foo.Name)
	assert.Equal(t, "Late Loaders", foo.Group)
	assert.True(t, foo.Enabled)
	assert.False(t, foo.IsRegex())

	require.Len(t, foo.Messages, 2)
	assert.Equal(t, TypeWarn, foo.Messages[0].Type)
	assert.Equal(t, "Foo is outdated.", foo.Messages[0].Text("en"))
	assert.Equal(t, "version('Foo.esp', '2.0', <)", foo.Messages[0].Condition)
	assert.Equal(t, "Bonjour", foo.Messages[1].Text("fr"))
	assert.Equal(t, "Hello", foo.Messages[1].Text("de")) // fallback to first

	require.Len(t, foo.Req, 2)
	assert.Equal(t, File{Name: "Skyrim.esm"}, foo.Req[0])
	assert.Equal(t, "SKSE64", foo.Req[1].DisplayName())
	assert.Equal(t, "active('Foo.esp')", foo.Req[1].Condition)
	require.Len(t, foo.Inc, 1)

	require.Len(t, foo.Tags, 2)
	assert.Equal(t, Tag{Name: "Delev"}, foo.Tags[0])
	assert.Equal(t, Tag{Name: "Relev", Condition: "file('Bar.esp')"}, foo.Tags[1])

	require.Len(t, foo.Dirty, 1)
	assert.Equal(t, uint32(0x24F0E2A1), foo.Dirty[0].CRC)
	assert.Equal(t, "SSEEdit v4.0.4", foo.Dirty[0].Util)
	assert.Equal(t, 5, foo.Dirty[0].ITM)
	assert.Equal(t, 2, foo.Dirty[0].UDR)
	assert.Equal(t, 1, foo.Dirty[0].NAV)
	assert.Equal(t, "Run a cleaning pass.", foo.Dirty[0].Detail)
	require.Len(t, foo.Clean, 1)
	assert.Equal(t, uint32(0xDEADBEEF), foo.Clean[0].CRC)

	assert.True(t, list.Plugins[1].IsRegex())
}

func TestLoadEmptyDocument(t *testing.T) {
	list, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, list.Plugins)
	assert.Empty(t, list.Globals)
}

func TestLoadCRCForms(t *testing.T) {
	src := `
plugins:
  - name: 'A.esp'
    dirty:
      - crc: 0xABCD1234
        util: x
      - crc: 'ABCD1235'
        util: x
      - crc: '0xABCD1236'
        util: x
`
	list, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, list.Plugins[0].Dirty, 3)
	assert.Equal(t, uint32(0xABCD1234), list.Plugins[0].Dirty[0].CRC)
	assert.Equal(t, uint32(0xABCD1235), list.Plugins[0].Dirty[1].CRC)
	assert.Equal(t, uint32(0xABCD1236), list.Plugins[0].Dirty[2].CRC)
}

func TestLoadLegacyInfoField(t *testing.T) {
	src := `
plugins:
  - name: 'A.esp'
    dirty:
      - crc: 0x1
        util: x
        info: 'legacy detail text'
`
	list, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "legacy detail text", list.Plugins[0].Dirty[0].Detail)
}

func TestLoadEnabledFlag(t *testing.T) {
	src := `
plugins:
  - name: 'A.esp'
  - name: 'B.esp'
    enabled: false
`
	list, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, list.Plugins[0].Enabled)
	assert.False(t, list.Plugins[1].Enabled)
}

func TestLoadSubs(t *testing.T) {
	src := `
plugins:
  - name: 'A.esp'
    msg:
      - type: say
        content: 'Use {0} to clean, see {1}.'
        subs:
          - 'SSEEdit'
          - 'the guide'
`
	list, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Use SSEEdit to clean, see the guide.",
		list.Plugins[0].Messages[0].Text("en"))
}

func TestLoadRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not yaml", "plugins: [unclosed"},
		{"missing plugin name", "plugins:\n  - group: x\n"},
		{"bad message type", "plugins:\n  - name: a\n    msg:\n      - type: shout\n        content: x\n"},
		{"missing content", "plugins:\n  - name: a\n    msg:\n      - type: say\n"},
		{"bad crc", "plugins:\n  - name: a\n    dirty:\n      - crc: 'xyz'\n"},
		{"missing crc", "plugins:\n  - name: a\n    dirty:\n      - util: x\n"},
		{"file without name", "plugins:\n  - name: a\n    req:\n      - display: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrListParse), "%v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "masterlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleList), 0o644))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, list.Plugins, 2)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrListRead))
}
