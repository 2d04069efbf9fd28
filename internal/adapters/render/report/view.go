package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/copytrade-cli/internal/application"
	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type RenderOptions struct {
	Now time.Time
}

// Copiers renders the stored copier tokens. Only masked labels are shown.
func Copiers(copiers []domain.Copier, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderCopiers(copiers, opts, s)
	})
}

// Outcomes renders the terminal result of every flow of a run.
func Outcomes(outcomes []domain.Outcome) (string, error) {
	return run(func(s styles) string {
		return renderOutcomes(outcomes, s)
	})
}

// History renders login journal entries, newest first.
func History(records []domain.LoginRecord, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderHistory(records, opts, s)
	})
}

func renderCopiers(copiers []domain.Copier, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Copier Tokens"),
		s.header.Render(fmt.Sprintf("copiers: %d", len(copiers))),
	}

	if len(copiers) == 0 {
		lines = append(lines, s.empty.Render("No copier tokens stored. Add one with `ct token add <token>`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([][]string, 0, len(copiers))
	for _, copier := range copiers {
		rows = append(rows, []string{
			s.id.Render(string(copier.ID)),
			s.detail.Render(copier.Label),
			s.meta.Render(relative(copier.AddedAt, opts.Now)),
		})
	}

	lines = append(lines, s.section.Render(table([]string{"ID", "TOKEN", "ADDED"}, rows, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOutcomes(outcomes []domain.Outcome, s styles) string {
	summary := application.Summarize(outcomes)
	lines := []string{
		s.title.Render("Copy Results"),
		s.header.Render(summaryLine(summary)),
	}

	if len(outcomes) == 0 {
		lines = append(lines, s.empty.Render("Nothing to do."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		message := outcome.Message
		if outcome.Simulated {
			message += " " + s.demo.Render("[simulated]")
		}

		rows = append(rows, []string{
			s.id.Render(domain.MaskToken(outcome.Token)),
			s.detail.Render(string(outcome.Kind)),
			statusStyle(outcome.Status, s).Render(string(outcome.Status)),
			message,
		})
	}

	lines = append(lines, s.section.Render(table([]string{"TOKEN", "ACTION", "STATUS", "MESSAGE"}, rows, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHistory(records []domain.LoginRecord, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Login History"),
		s.header.Render(fmt.Sprintf("entries: %d", len(records))),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No logins recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		accountType := s.detail.Render(record.AccountType.Label())
		if record.AccountType == domain.AccountTypeDemo {
			accountType = s.demo.Render(record.AccountType.Label())
		}

		rows = append(rows, []string{
			s.meta.Render(relative(record.At, opts.Now)),
			s.id.Render(record.LoginID),
			accountType,
			s.detail.Render(string(record.Role)),
			s.meta.Render(record.Token),
		})
	}

	lines = append(lines, s.section.Render(table([]string{"WHEN", "LOGIN", "TYPE", "ROLE", "TOKEN"}, rows, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func summaryLine(summary application.Summary) string {
	parts := []string{fmt.Sprintf("total: %d", summary.Total)}
	if summary.Copying > 0 {
		parts = append(parts, fmt.Sprintf("copying: %d", summary.Copying))
	}
	if summary.Stopped > 0 {
		parts = append(parts, fmt.Sprintf("stopped: %d", summary.Stopped))
	}
	if summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("failed: %d", summary.Failed))
	}

	return strings.Join(parts, "  ")
}

func statusStyle(status domain.CopierStatus, s styles) lipgloss.Style {
	switch status {
	case domain.CopierStatusCopying:
		return s.copying
	case domain.CopierStatusError:
		return s.failed
	default:
		return s.idle
	}
}

// table lays cells out in left-aligned columns padded to the widest cell.
func table(headers []string, rows [][]string, s styles) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)

	head := make([]string, len(headers))
	for i, header := range headers {
		head[i] = pad(s.column.Render(header), widths[i])
	}
	lines = append(lines, strings.TrimRight(strings.Join(head, "  "), " "))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i])
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	return strings.Join(lines, "\n")
}

func pad(cell string, width int) string {
	if gap := width - lipgloss.Width(cell); gap > 0 {
		return cell + strings.Repeat(" ", gap)
	}
	return cell
}

func relative(at, now time.Time) string {
	if at.IsZero() {
		return "n/a"
	}
	if now.IsZero() {
		return at.Local().Format("2006-01-02 15:04")
	}

	return humanize.RelTime(at, now, "ago", "from now")
}
