package view_test

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/export"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

func generated(t *testing.T) *plan.Plan {
	t.Helper()

	p, err := engine.New(catalog.Default(), engine.Config{}).Generate("tui-seed", engine.Overrides{})
	require.NoError(t, err)

	return p
}

func TestPopulationRows(t *testing.T) {
	p := generated(t)

	rows := view.PopulationRows(p)
	require.Len(t, rows, len(p.Disbursements))

	inScope := 0

	for i, row := range rows {
		d := p.Disbursements[i]
		assert.Equal(t, d.PaymentID, row[0])
		assert.Equal(t, d.PaymentDate.String(), row[1])
		assert.Equal(t, view.FormatAmount(d.Amount), row[3])

		if row[5] == "*" {
			inScope++
		}
	}

	assert.Equal(t, len(p.InScope()), inScope)
	assert.Nil(t, view.PopulationRows(nil))
}

func TestPopulationModel_View(t *testing.T) {
	p := generated(t)

	out := view.NewPopulationModel(p).View()
	assert.Contains(t, out, p.Seed)
	assert.Contains(t, out, p.Disbursements[0].PaymentID)

	empty := view.NewPopulationModel(nil).View()
	assert.Contains(t, empty, "No case generated yet")
}

func TestPopulationModel_EscGoesBack(t *testing.T) {
	_, cmd := view.NewPopulationModel(generated(t)).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, view.BackMsg{}, cmd())
}

func TestPreview(t *testing.T) {
	out := view.Preview(json.RawMessage(`{"a":1}`))
	assert.Equal(t, "{\n  \"a\": 1\n}", out)

	long := `{"k":"` + strings.Repeat("x", 2000) + `"}`
	assert.True(t, strings.HasSuffix(view.Preview(json.RawMessage(long)), "\n..."))

	assert.Contains(t, view.Preview(json.RawMessage(`{`)), "invalid data")
}

func TestExportModel_NoPlan(t *testing.T) {
	m := view.NewExportModel(export.NewService(), nil)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "No case generated yet")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, view.BackMsg{}, cmd())
}
