package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/export"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

func generated(t *testing.T) *plan.Plan {
	t.Helper()

	p, err := engine.New(catalog.Default(), engine.Config{}).Generate("export-seed", engine.Overrides{})
	require.NoError(t, err)

	return p
}

func TestService_Write(t *testing.T) {
	p := generated(t)
	dir := t.TempDir()

	paths, err := export.NewService().Write(p, dir)
	require.NoError(t, err)

	assert.Len(t, paths, len(p.ReferenceDocumentSpecs)+3)
	assert.Equal(t, filepath.Join(dir, export.PlanFile), paths[0])

	raw, err := os.ReadFile(filepath.Join(dir, export.PlanFile))
	require.NoError(t, err)

	var decoded plan.Plan
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, p.Seed, decoded.Seed)
	assert.Equal(t, p.Disbursements, decoded.Disbursements)

	first := p.ReferenceDocumentSpecs[0]
	doc, err := os.ReadFile(filepath.Join(dir, export.DocumentsDir, first.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), first.GenerationSpec.TemplateID)

	wb, err := excelize.OpenFile(filepath.Join(dir, export.AnswerKeyFile))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Answer Key")
	require.NoError(t, err)
	require.Len(t, rows, len(p.Disbursements)+1)
	assert.Equal(t, "Payment ID", rows[0][0])
	assert.Equal(t, p.Disbursements[0].PaymentID, rows[1][0])

	var splits int

	for _, r := range rows[1:] {
		if r[5] == "split" {
			splits++
		}
	}

	assert.Equal(t, 1, splits)

	scoping, err := wb.GetRows("Scoping")
	require.NoError(t, err)
	assert.Equal(t, p.Scoping.ThresholdAmount.String(), scoping[4][1])
}

func TestService_Zip(t *testing.T) {
	p := generated(t)
	svc := export.NewService()

	var buf bytes.Buffer
	require.NoError(t, svc.Zip(&buf, p))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.Contains(t, names, export.PlanFile)
	assert.Contains(t, names, export.AnswerKeyFile)
	assert.Contains(t, names, export.SummaryFile)
	assert.Contains(t, names, export.DocumentsDir+"/ap-aging-listing.json")

	var again bytes.Buffer
	require.NoError(t, svc.Zip(&again, p))

	files, err := svc.Bundle(p)
	require.NoError(t, err)
	assert.Equal(t, len(files), len(zr.File))
}

func TestService_Summary(t *testing.T) {
	p := &plan.Plan{
		Seed:    "s",
		YearEnd: plan.NewDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
		Disbursements: []plan.Disbursement{
			{
				PaymentID:   "P-1001",
				Payee:       "Summit Office Supply",
				PaymentDate: plan.NewDate(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)),
				Amount:      1250000,
				TrapKind:    "timingTrap",
				AnswerKey:   plan.AnswerKey{Classification: plan.ImproperlyExcluded},
			},
			{
				PaymentID:   "P-1002",
				Payee:       "Blue Ridge Telecom",
				PaymentDate: plan.NewDate(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)),
				Amount:      150000,
				TrapKind:    "none",
				AnswerKey:   plan.AnswerKey{Classification: plan.ProperlyExcluded},
			},
		},
		Scoping: plan.Scoping{ThresholdAmount: 1000000},
	}

	body := export.NewService().Summary(p)

	expected := []string{
		"Seed s | Year end 2024-12-31 | Threshold 10000.00",
		"* P-1001 | 2025-01-30 | Summit Office Supply | 12500.00 | improperlyExcluded [timingTrap]",
		"  P-1002 | 2025-02-02 | Blue Ridge Telecom | 1500.00 | properlyExcluded\n",
	}

	for _, sub := range expected {
		assert.True(t, strings.Contains(body, sub), "expected body to contain %q", sub)
	}
}

func TestArchiveName(t *testing.T) {
	p := &plan.Plan{Seed: `class 101/"B"`, YearEnd: plan.NewDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))}

	assert.Equal(t, "case_class_101__B__20241231.zip", export.ArchiveName(p))
}
