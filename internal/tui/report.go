package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/converge/internal/reconcile"
)

// Format selects how a finished run is reported.
type Format int

const (
	// FormatPlain prints a single "status: message" line.
	FormatPlain Format = iota
	// FormatStyled prints a coloured summary with one line per unit.
	FormatStyled
	// FormatJSON prints the result as a JSON object.
	FormatJSON
)

// Verdict returns "failed", "changed" or "ok" for res.
func Verdict(res reconcile.Result) string {
	switch {
	case res.Failed:
		return "failed"
	case res.Changed:
		return "changed"
	default:
		return "ok"
	}
}

// Render writes the report for res to w.
func Render(w io.Writer, res reconcile.Result, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatStyled:
		_, err := fmt.Fprintln(w, styled(res))
		return err
	default:
		_, err := fmt.Fprintf(w, "%s: %s\n", Verdict(res), res.Message)
		return err
	}
}

func styled(res reconcile.Result) string {
	var sections []string

	header := fmt.Sprintf("%s %s", StatusIcon(verdictStatus(res)), verdictStyle(res).Render(Verdict(res)))
	if res.Message != "" {
		header = fmt.Sprintf("%s: %s", header, res.Message)
	}
	sections = append(sections, header)

	if len(res.Units) > 1 {
		sections = append(sections, renderUnits(res.Units))
		summary := fmt.Sprintf("%d changed, %d unchanged", res.ChangedCount, res.UnchangedCount)
		sections = append(sections, summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderUnits(units []reconcile.UnitResult) string {
	lines := make([]string, 0, len(units))
	for _, unit := range units {
		line := fmt.Sprintf(" %s %s", StatusIcon(unit.Status), unit.Target)
		if strings.TrimSpace(unit.Message) != "" {
			line = fmt.Sprintf("%s: %s", line, unit.Message)
		}
		if unit.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, unit.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func verdictStatus(res reconcile.Result) reconcile.Status {
	switch {
	case res.Failed:
		return reconcile.StatusFailed
	case res.Changed:
		return reconcile.StatusChanged
	default:
		return reconcile.StatusUnchanged
	}
}

func verdictStyle(res reconcile.Result) lipgloss.Style {
	switch {
	case res.Failed:
		return failureStyle
	case res.Changed:
		return changedStyle
	default:
		return unchangedStyle
	}
}

// StatusIcon returns the glyph representing a unit status.
func StatusIcon(status reconcile.Status) string {
	switch status {
	case reconcile.StatusChanged:
		return changedStyle.Render("✓")
	case reconcile.StatusUnchanged:
		return unchangedStyle.Render("=")
	case reconcile.StatusFailed:
		return failureStyle.Render("✗")
	case reconcile.StatusWouldChange:
		return pendingStyle.Render("↻")
	default:
		return pendingStyle.Render("…")
	}
}
