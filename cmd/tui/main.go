package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/auditcase/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/config"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/export"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

type model struct {
	engine        *engine.Engine
	exportService *export.Service
	plan          *plan.Plan

	currentView View

	generateView   view.GenerateModel
	populationView view.PopulationModel
	documentsView  view.DocumentsModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewGenerate   View = 1
	ViewPopulation View = 2
	ViewDocuments  View = 3
	ViewExport     View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	vendors, err := catalog.Load(cfg.Generation.CatalogPath)
	if err != nil {
		slog.Error("failed to load vendor catalog", "path", cfg.Generation.CatalogPath, "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the program, so engine logs are dropped.
	eng := engine.New(vendors, cfg.Engine(), engine.WithLogger(slog.New(slog.DiscardHandler)))

	return model{
		engine:        eng,
		exportService: export.NewService(),
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewGenerate
				m.generateView = view.NewGenerateModel(m.engine)

				return m, m.generateView.Init()
			case "2":
				m.currentView = ViewPopulation
				m.populationView = view.NewPopulationModel(m.plan)

				return m, m.populationView.Init()
			case "3":
				m.currentView = ViewDocuments
				m.documentsView = view.NewDocumentsModel(m.plan)

				return m, m.documentsView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.plan)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.CaseGeneratedMsg:
		m.plan = msg.Plan
		m.currentView = ViewPopulation
		m.populationView = view.NewPopulationModel(m.plan)

		return m, m.populationView.Init()
	}

	switch m.currentView {
	case ViewGenerate:
		var newModel tea.Model
		newModel, cmd = m.generateView.Update(msg)
		m.generateView = newModel.(view.GenerateModel)
	case ViewPopulation:
		var newModel tea.Model
		newModel, cmd = m.populationView.Update(msg)
		m.populationView = newModel.(view.PopulationModel)
	case ViewDocuments:
		var newModel tea.Model
		newModel, cmd = m.documentsView.Update(msg)
		m.documentsView = newModel.(view.DocumentsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		current := "No case generated"
		if m.plan != nil {
			current = "Current case: " + m.plan.Seed
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Audit Case Generator\n\n" +
				current + "\n\n" +
				"1. Generate Case\n" +
				"2. Browse Disbursements\n" +
				"3. Reference Documents\n" +
				"4. Export Case\n\n" +
				"q. Quit",
		)
	case ViewGenerate:
		return m.generateView.View()
	case ViewPopulation:
		return m.populationView.View()
	case ViewDocuments:
		return m.documentsView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
