package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cloudsign/internal/notify"
	"github.com/desertthunder/cloudsign/internal/tasks"
)

// LineKind classifies a report line for styling.
type LineKind int

const (
	PlainLine LineKind = iota
	AccountLine
	BonusLine
	CapacityLine
	FailureLine
)

// Classify returns the kind of a report line.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return PlainLine
	case strings.Contains(trimmed, " failed"):
		return FailureLine
	case strings.HasSuffix(trimmed, " start") && strings.Contains(trimmed, ". account "):
		return AccountLine
	case strings.Contains(trimmed, "bonus (M)"):
		return BonusLine
	case strings.HasSuffix(trimmed, " GiB"):
		return CapacityLine
	default:
		return PlainLine
	}
}

// RenderReport renders the title and report lines for the terminal.
func RenderReport(title string, lines []string) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(renderLine(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLine(line string) string {
	switch Classify(line) {
	case AccountLine:
		return styles.account.Render(line)
	case BonusLine:
		return styles.ok.Render(line)
	case CapacityLine:
		return styles.warn.Render(line)
	case FailureLine:
		return styles.err.Render(line)
	default:
		return line
	}
}

// RenderSummary renders the run counters on one line.
func RenderSummary(s tasks.Summary) string {
	text := fmt.Sprintf("%d accounts, %d skipped, %d batches, +%d M personal, +%d M family",
		s.Accounts, s.Skipped, s.Batches, s.PersonalBonus, s.FamilyBonus)

	failures := s.LoginFailures + s.TaskFailures
	if failures > 0 {
		return styles.help.Render(text) + " " + styles.err.Render(fmt.Sprintf("%d failed", failures))
	}
	return styles.help.Render(text)
}

// RenderResults renders one line per notification channel.
func RenderResults(results []notify.Result) string {
	var b strings.Builder
	for _, r := range results {
		switch {
		case r.Skipped:
			b.WriteString(styles.help.Render(fmt.Sprintf("%s: not configured", r.Channel)))
		case r.Err != nil:
			b.WriteString(styles.err.Render(fmt.Sprintf("%s: %v", r.Channel, r.Err)))
		default:
			b.WriteString(styles.ok.Render(fmt.Sprintf("%s: sent", r.Channel)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
