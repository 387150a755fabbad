// Package output renders diagnostic reports to the terminal: styled
// plain text on TTYs, raw text elsewhere, plus a markdown report
// format.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/masterlist"
	"github.com/arthur-debert/lootlint/pkg/resolver"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Report is everything one check run produced.
type Report struct {
	Game        string
	Messages    []resolver.ResolvedMessage
	Diagnostics []resolver.Diagnostic
}

// Counts tallies messages by severity.
func (r *Report) Counts() (says, warns, errs int) {
	for _, m := range r.Messages {
		switch m.Severity {
		case masterlist.TypeError:
			errs++
		case masterlist.TypeWarn:
			warns++
		default:
			says++
		}
	}
	return says, warns, errs
}

// HasProblems reports whether anything above informational severity
// surfaced.
func (r *Report) HasProblems() bool {
	_, warns, errs := r.Counts()
	return warns > 0 || errs > 0
}

type styles struct {
	heading  lipgloss.Style
	plugin   lipgloss.Style
	say      lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
	source   lipgloss.Style
	diagnose lipgloss.Style
}

func newStyles() styles {
	return styles{
		heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		plugin:   lipgloss.NewStyle().Bold(true),
		say:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		source:   lipgloss.NewStyle().Faint(true),
		diagnose: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// Renderer writes reports to a terminal or file.
type Renderer struct {
	writer io.Writer
	color  bool
	styles styles
}

// NewRenderer builds a renderer for w. Color is used only when w is
// a terminal, the environment supports it, and noColor is false.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	color := false
	if !noColor {
		if f, ok := w.(*os.File); ok {
			color = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) &&
				termenv.EnvColorProfile() != termenv.Ascii
		}
	}
	return &Renderer{writer: w, color: color, styles: newStyles()}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) severityStyle(t masterlist.MessageType) lipgloss.Style {
	switch t {
	case masterlist.TypeError:
		return r.styles.err
	case masterlist.TypeWarn:
		return r.styles.warn
	default:
		return r.styles.say
	}
}

func severityLabel(t masterlist.MessageType) string {
	switch t {
	case masterlist.TypeError:
		return "error"
	case masterlist.TypeWarn:
		return "warn"
	default:
		return "note"
	}
}

// Render writes the report as grouped plain text.
func (r *Renderer) Render(report *Report) error {
	says, warns, errs := report.Counts()

	if len(report.Messages) == 0 {
		fmt.Fprintf(r.writer, "%s: no messages.\n", report.Game)
	}

	lastPlugin := "\x00"
	for _, msg := range report.Messages {
		if msg.Plugin != lastPlugin {
			if lastPlugin != "\x00" {
				fmt.Fprintln(r.writer)
			}
			name := msg.Plugin
			if name == "" {
				name = "General"
			}
			fmt.Fprintln(r.writer, r.style(r.styles.plugin, name))
			lastPlugin = msg.Plugin
		}
		label := r.style(r.severityStyle(msg.Severity), fmt.Sprintf("[%s]", severityLabel(msg.Severity)))
		source := ""
		if msg.Source != resolver.SourceMasterlist {
			source = " " + r.style(r.styles.source, fmt.Sprintf("(%s)", msg.Source))
		}
		fmt.Fprintf(r.writer, "  %s %s%s\n", label, msg.Text, source)
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer, r.style(r.styles.heading, "Metadata problems"))
		for _, d := range report.Diagnostics {
			fmt.Fprintf(r.writer, "  %s\n", r.style(r.styles.diagnose, d.String()))
		}
	}

	fmt.Fprintln(r.writer)
	fmt.Fprintf(r.writer, "%d error(s), %d warning(s), %d note(s)\n", errs, warns, says)
	return nil
}

// RenderMarkdown writes the report as markdown, pretty-printed
// through glamour on color terminals.
func (r *Renderer) RenderMarkdown(report *Report) error {
	md := Markdown(report)
	if !r.color {
		_, err := io.WriteString(r.writer, md)
		return err
	}
	rendered, err := glamour.Render(md, "auto")
	if err != nil {
		_, werr := io.WriteString(r.writer, md)
		return werr
	}
	_, err = io.WriteString(r.writer, rendered)
	return err
}

// Markdown formats the report as a markdown document.
func Markdown(report *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Load order report: %s\n\n", report.Game)

	says, warns, errs := report.Counts()
	fmt.Fprintf(&sb, "%d error(s), %d warning(s), %d note(s)\n\n", errs, warns, says)

	lastPlugin := "\x00"
	for _, msg := range report.Messages {
		if msg.Plugin != lastPlugin {
			name := msg.Plugin
			if name == "" {
				name = "General"
			}
			fmt.Fprintf(&sb, "## %s\n\n", name)
			lastPlugin = msg.Plugin
		}
		fmt.Fprintf(&sb, "- **%s**: %s", severityLabel(msg.Severity), msg.Text)
		if msg.Source != resolver.SourceMasterlist {
			fmt.Fprintf(&sb, " _(%s)_", msg.Source)
		}
		sb.WriteString("\n")
	}

	if len(report.Diagnostics) > 0 {
		sb.WriteString("\n## Metadata problems\n\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", d.String())
		}
	}
	return sb.String()
}
