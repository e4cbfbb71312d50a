package view

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/auditcase/internal/export"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

type exportState int

const (
	exportStatePath exportState = iota
	exportStateExporting
	exportStateResult
)

type exportFields struct {
	path string
}

type ExportModel struct {
	CommonModel
	exportService *export.Service
	plan          *plan.Plan

	state   exportState
	err     error
	fields  *exportFields
	form    *huh.Form
	spinner spinner.Model
	files   []string
	summary string
}

func NewExportModel(svc *export.Service, p *plan.Plan) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	m := ExportModel{
		exportService: svc,
		plan:          p,
		state:         exportStatePath,
		fields:        &exportFields{path: "./exports"},
		spinner:       s,
	}
	m.form = m.buildPathForm()

	return m
}

func (m ExportModel) Title() string { return "Export Case" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	if m.plan == nil {
		return nil
	}

	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.plan == nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		return m, nil
	}

	switch m.state {
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.fields.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.files = result.files
		m.summary = result.summary

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.fields.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	if m.plan == nil {
		return pageStyle.Render(faintStyle.Render("No case generated yet. Press Esc and generate one first."))
	}

	switch m.state {
	case exportStatePath:
		return pageStyle.Render(m.form.View())
	case exportStateExporting:
		return pageStyle.Render(fmt.Sprintf("%s Writing plan, documents and answer key...", m.spinner.View()))
	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return pageStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Render("Export Complete!"),
		"",
		fmt.Sprintf("%d files written to %s", len(m.files), filepath.Dir(m.files[0])),
		"",
		m.summary,
	))
}

type exportResultMsg struct {
	files   []string
	summary string
	err     error
}

func (m ExportModel) runExportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		path = strings.TrimSpace(path)
		if path == "" {
			path = "."
		}

		files, err := m.exportService.Write(m.plan, path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if len(files) == 0 {
			return exportResultMsg{err: fmt.Errorf("nothing written to %s", path)}
		}

		return exportResultMsg{files: files, summary: m.exportService.Summary(m.plan)}
	}
}
