package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/lootlint/pkg/masterlist"
	"github.com/arthur-debert/lootlint/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		Game: "Skyrim Special Edition",
		Messages: []resolver.ResolvedMessage{
			{Plugin: "", Severity: masterlist.TypeSay, Text: "Masterlist updated.", Source: resolver.SourceMasterlist},
			{Plugin: "Foo.esp", Severity: masterlist.TypeWarn, Text: "This plugin is dirty (5 ITM).", Source: resolver.SourceMasterlist},
			{Plugin: "Foo.esp", Severity: masterlist.TypeError, Text: "Requires Bar.esm.", Source: resolver.SourceUserlist},
			{Plugin: "Baz.esp", Severity: masterlist.TypeError, Text: "FormIDs out of range.", Source: resolver.SourceCheck},
		},
		Diagnostics: []resolver.Diagnostic{
			{Plugin: "Foo.esp", Detail: `message condition "frobnicate('x')"`},
		},
	}
}

func TestReportCounts(t *testing.T) {
	report := sampleReport()
	says, warns, errs := report.Counts()
	assert.Equal(t, 1, says)
	assert.Equal(t, 1, warns)
	assert.Equal(t, 2, errs)
	assert.True(t, report.HasProblems())

	empty := &Report{Game: "x"}
	assert.False(t, empty.HasProblems())
}

func TestRenderPlainText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	require.NoError(t, r.Render(sampleReport()))
	out := buf.String()

	// Grouped by plugin, global messages under "General".
	assert.Contains(t, out, "General\n")
	assert.Contains(t, out, "Foo.esp\n")
	assert.Contains(t, out, "Baz.esp\n")
	assert.Less(t, strings.Index(out, "General"), strings.Index(out, "Foo.esp"))

	assert.Contains(t, out, "[warn] This plugin is dirty (5 ITM).")
	assert.Contains(t, out, "[error] Requires Bar.esm. (userlist)")
	assert.Contains(t, out, "[error] FormIDs out of range. (check)")
	// Masterlist provenance is the default and stays unlabeled.
	assert.NotContains(t, out, "(masterlist)")

	assert.Contains(t, out, "Metadata problems")
	assert.Contains(t, out, "frobnicate")
	assert.Contains(t, out, "2 error(s), 1 warning(s), 1 note(s)")

	// A buffer is not a terminal: no ANSI escapes.
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	require.NoError(t, r.Render(&Report{Game: "Oblivion"}))
	assert.Contains(t, buf.String(), "Oblivion: no messages.")
	assert.Contains(t, buf.String(), "0 error(s), 0 warning(s), 0 note(s)")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())
	assert.True(t, strings.HasPrefix(md, "# Load order report: Skyrim Special Edition"))
	assert.Contains(t, md, "## General")
	assert.Contains(t, md, "## Foo.esp")
	assert.Contains(t, md, "- **warn**: This plugin is dirty (5 ITM).")
	assert.Contains(t, md, "- **error**: Requires Bar.esm. _(userlist)_")
	assert.Contains(t, md, "## Metadata problems")
}

func TestRenderMarkdownPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	require.NoError(t, r.RenderMarkdown(sampleReport()))
	// Not a TTY: raw markdown, no glamour styling.
	assert.Equal(t, Markdown(sampleReport()), buf.String())
}
