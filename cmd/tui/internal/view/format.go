package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

// FormatAmount renders a plan amount with a thousands separator.
func FormatAmount(m plan.Money) string {
	s := m.String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}

	return out
}

// FormatAnswer summarizes an answer key in one cell.
func FormatAnswer(k plan.AnswerKey) string {
	if !k.IsSplit() {
		return string(k.Classification)
	}

	parts := make([]string, len(k.Splits))
	for i, s := range k.Splits {
		parts[i] = fmt.Sprintf("%s %s", s.Classification, FormatAmount(s.Amount))
	}

	return "split: " + strings.Join(parts, " / ")
}

func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
