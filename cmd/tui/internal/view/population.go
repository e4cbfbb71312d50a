package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
)

type PopulationModel struct {
	CommonModel
	plan  *plan.Plan
	table table.Model
}

func NewPopulationModel(p *plan.Plan) PopulationModel {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Date", Width: 10},
		{Title: "Payee", Width: 28},
		{Title: "Amount", Width: 14},
		{Title: "Timing", Width: 6},
		{Title: "Scope", Width: 5},
	}

	t := newTable(columns, 15)
	t.SetRows(PopulationRows(p))

	return PopulationModel{plan: p, table: t}
}

// PopulationRows lays out one row per disbursement in payment order.
func PopulationRows(p *plan.Plan) []table.Row {
	if p == nil {
		return nil
	}

	rows := make([]table.Row, 0, len(p.Disbursements))
	for _, d := range p.Disbursements {
		scope := ""
		if d.Amount >= p.Scoping.ThresholdAmount {
			scope = "*"
		}

		rows = append(rows, table.Row{
			d.PaymentID,
			d.PaymentDate.String(),
			d.Payee,
			FormatAmount(d.Amount),
			string(d.ServiceTiming),
			scope,
		})
	}

	return rows
}

func (m PopulationModel) Title() string { return "Disbursements" }

func (m PopulationModel) ShortHelp() string {
	return "↑/↓: navigate | Esc: back"
}

func (m PopulationModel) Init() tea.Cmd {
	return nil
}

func (m PopulationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PopulationModel) View() string {
	if m.plan == nil {
		return pageStyle.Render(faintStyle.Render("No case generated yet. Press Esc and generate one first."))
	}

	header := fmt.Sprintf("Seed %s | Year end %s | Threshold %s",
		m.plan.Seed, m.plan.YearEnd, FormatAmount(m.plan.Scoping.ThresholdAmount))

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		accentStyle.Render(header),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			tableFrame.Render(m.table.View()),
			panelStyle.Render(m.detail()),
		),
		"",
		faintStyle.Render(m.ShortHelp()),
	))
}

func (m PopulationModel) detail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.plan.Disbursements) {
		return ""
	}

	d := m.plan.Disbursements[i]

	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", d.PaymentID, d.Payee)
	fmt.Fprintf(&b, "Paid %s  %s\n", d.PaymentDate, FormatAmount(d.Amount))
	fmt.Fprintf(&b, "Invoices: %s\n", strings.Join(d.InvoiceNumbers, ", "))

	if d.TrapKind != population.TrapNone {
		fmt.Fprintf(&b, "Trap: %s\n", d.TrapKind)
	}

	b.WriteString("\n")
	b.WriteString(okStyle.Render(FormatAnswer(d.AnswerKey)))
	b.WriteString("\n\n")
	b.WriteString(d.AnswerKey.Explanation)

	return b.String()
}
