package view

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

const maxPreviewBytes = 1200

type DocumentsModel struct {
	CommonModel
	plan  *plan.Plan
	table table.Model
}

func NewDocumentsModel(p *plan.Plan) DocumentsModel {
	columns := []table.Column{
		{Title: "ID", Width: 24},
		{Title: "Template", Width: 22},
		{Title: "File", Width: 30},
	}

	t := newTable(columns, 15)

	if p != nil {
		rows := make([]table.Row, 0, len(p.ReferenceDocumentSpecs))
		for _, d := range p.ReferenceDocumentSpecs {
			rows = append(rows, table.Row{d.ID, d.GenerationSpec.TemplateID, d.FileName})
		}

		t.SetRows(rows)
	}

	return DocumentsModel{plan: p, table: t}
}

func (m DocumentsModel) Title() string { return "Reference Documents" }

func (m DocumentsModel) ShortHelp() string {
	return "↑/↓: navigate | Esc: back"
}

func (m DocumentsModel) Init() tea.Cmd {
	return nil
}

func (m DocumentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DocumentsModel) View() string {
	if m.plan == nil {
		return pageStyle.Render(faintStyle.Render("No case generated yet. Press Esc and generate one first."))
	}

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		accentStyle.Render(fmt.Sprintf("%d documents", len(m.plan.ReferenceDocumentSpecs))),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			tableFrame.Render(m.table.View()),
			panelStyle.Render(m.preview()),
		),
		"",
		faintStyle.Render(m.ShortHelp()),
	))
}

func (m DocumentsModel) preview() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.plan.ReferenceDocumentSpecs) {
		return ""
	}

	return Preview(m.plan.ReferenceDocumentSpecs[i].GenerationSpec.Data)
}

// Preview pretty-prints template data, truncated to fit the panel.
func Preview(data json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return errorStyle.Render(fmt.Sprintf("invalid data: %v", err))
	}

	if buf.Len() > maxPreviewBytes {
		return buf.String()[:maxPreviewBytes] + "\n..."
	}

	return buf.String()
}
