package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcncl/jsonlens/internal/classifier"
	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/diff"
	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/tools"
)

const rootLabel = "(root)"

// Formatter renders tool results for the terminal
type Formatter struct {
	format string
	styles styles
}

type styles struct {
	add     lipgloss.Style
	remove  lipgloss.Style
	replace lipgloss.Style
	failure lipgloss.Style
	path    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{add: plain, remove: plain, replace: plain, failure: plain, path: plain, muted: plain}
	}
	return styles{
		add:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		remove:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		replace: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		path:    lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Faint(true),
	}
}

// NewFormatter creates a new Formatter instance
func NewFormatter(cfg config.OutputConfig) *Formatter {
	format := cfg.Format
	if format == "" {
		format = config.FormatJSON
	}
	return &Formatter{format: format, styles: newStyles(cfg.Color)}
}

// FormatDiff renders a json_diff result.
func (f *Formatter) FormatDiff(result string) (string, error) {
	switch f.format {
	case config.FormatJSON:
		return result, nil
	case config.FormatPretty:
		return indent(result)
	}

	ops, err := diff.Decode(result)
	if err != nil {
		return "", fmt.Errorf("failed to read diff result: %w", err)
	}
	if len(ops) == 0 {
		return f.styles.muted.Render("no differences"), nil
	}

	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		path := f.styles.path.Render(displayPath(op.Path))
		switch op.Op {
		case diff.OpReplace:
			lines = append(lines, fmt.Sprintf("%s %s: %s -> %s",
				f.styles.replace.Render("~"), path, compact(op.From), compact(op.To)))
		case diff.OpAdd:
			lines = append(lines, fmt.Sprintf("%s %s: %s", f.styles.add.Render("+"), path, compact(op.To)))
		case diff.OpRemove:
			lines = append(lines, fmt.Sprintf("%s %s: %s", f.styles.remove.Render("-"), path, compact(op.From)))
		default:
			lines = append(lines, f.styles.failure.Render("! "+op.Reason))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// FormatFields renders a json_human_fields result.
func (f *Formatter) FormatFields(result string) (string, error) {
	switch f.format {
	case config.FormatJSON:
		return result, nil
	case config.FormatPretty:
		return indent(result)
	}

	var paths []string
	if err := json.Unmarshal([]byte(result), &paths); err != nil {
		return "", fmt.Errorf("failed to read fields result: %w", err)
	}
	if len(paths) == 0 {
		return f.styles.muted.Render("no human-readable fields"), nil
	}
	if len(paths) == 1 && strings.HasPrefix(paths[0], classifier.ErrorPrefix) {
		return f.styles.failure.Render("! " + strings.TrimPrefix(paths[0], classifier.ErrorPrefix)), nil
	}

	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = f.styles.path.Render(displayPath(p))
	}
	return strings.Join(lines, "\n"), nil
}

// FormatVerdicts renders per-field classifier verdicts.
func (f *Formatter) FormatVerdicts(verdicts []classifier.Verdict) (string, error) {
	if verdicts == nil {
		verdicts = []classifier.Verdict{}
	}
	if f.format != config.FormatText {
		return f.encode(verdicts)
	}

	lines := make([]string, len(verdicts))
	for i, v := range verdicts {
		mark := f.styles.remove.Render("no ")
		if v.Human {
			mark = f.styles.add.Render("yes")
		}
		lines[i] = fmt.Sprintf("%s %s %s", mark, f.styles.path.Render(displayPath(v.Path)), f.styles.muted.Render("("+string(v.Rule)+")"))
	}
	return strings.Join(lines, "\n"), nil
}

// FormatTools renders the registered tool descriptors.
func (f *Formatter) FormatTools(list []tools.Descriptor) (string, error) {
	if f.format != config.FormatText {
		return f.encode(list)
	}

	var b strings.Builder
	for i, d := range list {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(f.styles.path.Render(d.Name))
		b.WriteString("\n  ")
		b.WriteString(d.Description)
		for _, p := range d.Parameters {
			req := ""
			if p.Required {
				req = " (required)"
			}
			fmt.Fprintf(&b, "\n  %s%s: %s", p.Name, f.styles.muted.Render(req), p.Description)
		}
	}
	return b.String(), nil
}

func (f *Formatter) encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.format == config.FormatPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func indent(result string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(result), "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent result: %w", err)
	}
	return buf.String(), nil
}

func displayPath(path string) string {
	if path == "" {
		return rootLabel
	}
	return path
}

func compact(v *models.Value) string {
	if v == nil {
		return "null"
	}
	return v.Compact()
}
