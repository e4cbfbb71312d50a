package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

type generateState int

const (
	generateStateForm generateState = iota
	generateStateRunning
	generateStateResult
)

// generateFields outlives model copies so the form can bind to it.
type generateFields struct {
	seed    string
	count   string
	yearEnd string
}

type GenerateModel struct {
	CommonModel
	engine *engine.Engine

	state   generateState
	fields  *generateFields
	form    *huh.Form
	spinner spinner.Model

	plan *plan.Plan
	err  error
}

func NewGenerateModel(e *engine.Engine) GenerateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	m := GenerateModel{
		engine:  e,
		state:   generateStateForm,
		fields:  &generateFields{},
		spinner: s,
	}
	m.form = m.buildForm()

	return m
}

func (m GenerateModel) Title() string { return "Generate Case" }

func (m GenerateModel) ShortHelp() string {
	switch m.state {
	case generateStateRunning:
		return "Generating..."
	case generateStateResult:
		return "Enter: view disbursements | Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m GenerateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case generateStateForm:
		return m.updateForm(msg)
	case generateStateRunning:
		return m.updateRunning(msg)
	case generateStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m GenerateModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	m.state = generateStateRunning
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runCmd(*m.fields))
}

func (m GenerateModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(generateResultMsg); ok {
		m.state = generateStateResult
		m.plan = result.plan
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m GenerateModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		return m, Back
	case tea.KeyEnter:
		if m.plan != nil {
			p := m.plan
			return m, func() tea.Msg { return CaseGeneratedMsg{Plan: p} }
		}
	}

	return m, nil
}

func (m GenerateModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("seed").
				Title("Seed").
				Description("The same seed always produces the same case").
				Placeholder("class-2025-a").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("seed is required")
					}

					return nil
				}).
				Value(&m.fields.seed),
			huh.NewInput().
				Key("count").
				Title("Disbursements").
				Description(fmt.Sprintf("%d-%d, empty for seeded choice", population.MinDisbursements, population.MaxDisbursements)).
				Validate(validateCount).
				Value(&m.fields.count),
			huh.NewInput().
				Key("year_end").
				Title("Year End").
				Description("YYYY-MM-DD, empty for seeded choice").
				Validate(func(s string) error {
					if s == "" {
						return nil
					}

					_, err := calendar.Parse(s)

					return err
				}).
				Value(&m.fields.yearEnd),
		),
	).WithWidth(60).WithShowHelp(false)
}

func validateCount(s string) error {
	if s == "" {
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be a number")
	}

	if n < population.MinDisbursements || n > population.MaxDisbursements {
		return fmt.Errorf("must be between %d and %d", population.MinDisbursements, population.MaxDisbursements)
	}

	return nil
}

// Overrides converts the form input into generation overrides.
func (f generateFields) Overrides() (engine.Overrides, error) {
	var o engine.Overrides

	if f.count != "" {
		n, err := strconv.Atoi(f.count)
		if err != nil {
			return o, fmt.Errorf("parsing count: %w", err)
		}

		o.DisbursementCount = n
	}

	if f.yearEnd != "" {
		ye, err := calendar.Parse(f.yearEnd)
		if err != nil {
			return o, err
		}

		o.YearEnd = &ye
	}

	return o, nil
}

type generateResultMsg struct {
	plan *plan.Plan
	err  error
}

func (m GenerateModel) runCmd(fields generateFields) tea.Cmd {
	return func() tea.Msg {
		o, err := fields.Overrides()
		if err != nil {
			return generateResultMsg{err: err}
		}

		p, err := m.engine.Generate(strings.TrimSpace(fields.seed), o)

		return generateResultMsg{plan: p, err: err}
	}
}

func (m GenerateModel) View() string {
	switch m.state {
	case generateStateForm:
		return pageStyle.Render(m.form.View())
	case generateStateRunning:
		return pageStyle.Render(fmt.Sprintf("%s Generating population and invoices...", m.spinner.View()))
	case generateStateResult:
		return m.viewResult()
	}

	return ""
}

func (m GenerateModel) viewResult() string {
	if m.err != nil {
		msg := fmt.Sprintf("Error: %v", m.err)

		var exhausted *engine.ExhaustedError
		if errors.As(m.err, &exhausted) {
			codes := make([]string, 0)
			for _, c := range validation.Codes(exhausted.Issues) {
				codes = append(codes, c.String())
			}

			msg = fmt.Sprintf("No valid case after %d attempts.\nUnresolved: %s", exhausted.Attempts, strings.Join(codes, ", "))
		}

		return pageStyle.Render(errorStyle.Render(msg))
	}

	p := m.plan

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Render("Case Generated"),
		"",
		fmt.Sprintf("Seed:           %s", p.Seed),
		fmt.Sprintf("Year end:       %s", p.YearEnd),
		fmt.Sprintf("Disbursements:  %d", len(p.Disbursements)),
		fmt.Sprintf("Documents:      %d", len(p.ReferenceDocumentSpecs)),
		fmt.Sprintf("Materiality:    %s", FormatAmount(p.Scoping.PerformanceMateriality)),
		fmt.Sprintf("Threshold:      %s (%d in scope)", FormatAmount(p.Scoping.ThresholdAmount), len(p.InScope())),
		"",
		faintStyle.Render(m.ShortHelp()),
	))
}
