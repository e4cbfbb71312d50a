package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
)

const (
	PlanFile      = "plan.json"
	AnswerKeyFile = "answer_key.xlsx"
	SummaryFile   = "summary.txt"
	DocumentsDir  = "documents"

	answerKeySheet = "Answer Key"
	scopingSheet   = "Scoping"
)

// File is one entry of an export bundle.
type File struct {
	Name    string
	Content []byte
}

// Service builds export bundles for generated plans.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Bundle returns the files of the export in a fixed order: the plan, one JSON
// file per reference document, the answer key workbook and the summary.
func (s *Service) Bundle(p *plan.Plan) ([]File, error) {
	planJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding plan: %w", err)
	}

	files := []File{{Name: PlanFile, Content: planJSON}}

	for _, d := range p.ReferenceDocumentSpecs {
		b, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding document %s: %w", d.ID, err)
		}

		files = append(files, File{Name: DocumentsDir + "/" + d.ID + ".json", Content: b})
	}

	wb, err := s.AnswerKeyWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	files = append(files,
		File{Name: AnswerKeyFile, Content: buf.Bytes()},
		File{Name: SummaryFile, Content: []byte(s.Summary(p))},
	)

	return files, nil
}

// Write stores the bundle under dir and returns the written paths.
func (s *Service) Write(p *plan.Plan, dir string) ([]string, error) {
	files, err := s.Bundle(p)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(dir, DocumentsDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(files))

	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Zip streams the bundle as a zip archive.
func (s *Service) Zip(w io.Writer, p *plan.Plan) error {
	files, err := s.Bundle(p)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	for _, f := range files {
		zf, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", f.Name, err)
		}

		if _, err := zf.Write(f.Content); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}

	return nil
}

// AnswerKeyWorkbook lays out the instructor's answer key. The caller closes the file.
func (s *Service) AnswerKeyWorkbook(p *plan.Plan) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", answerKeySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	headers := []any{"Payment ID", "Payee", "Payment Date", "Amount", "In Scope", "Classification", "Detail", "Explanation"}
	if err := f.SetSheetRow(answerKeySheet, "A1", &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing headers: %w", err)
	}

	for i, d := range p.Disbursements {
		row := []any{
			d.PaymentID,
			d.Payee,
			d.PaymentDate.String(),
			d.Amount.String(),
			d.Amount >= p.Scoping.ThresholdAmount,
			classificationLabel(d.AnswerKey),
			splitDetail(d.AnswerKey),
			d.AnswerKey.Explanation,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("addressing row %d: %w", i+2, err)
		}

		if err := f.SetSheetRow(answerKeySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(scopingSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating scoping sheet: %w", err)
	}

	scoping := [][]any{
		{"Seed", p.Seed},
		{"Year End", p.YearEnd.String()},
		{"Performance Materiality", p.Scoping.PerformanceMateriality.String()},
		{"Scope Percent", p.Scoping.ScopePercent.String()},
		{"Threshold", p.Scoping.ThresholdAmount.String()},
		{"Items In Scope", len(p.InScope())},
	}

	for i, row := range scoping {
		if err := f.SetSheetRow(scopingSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing scoping row: %w", err)
		}
	}

	return f, nil
}

func classificationLabel(k plan.AnswerKey) string {
	if k.IsSplit() {
		return "split"
	}

	return string(k.Classification)
}

func splitDetail(k plan.AnswerKey) string {
	parts := make([]string, 0, len(k.Splits))
	for _, sp := range k.Splits {
		parts = append(parts, fmt.Sprintf("%s %s (%d days)", sp.Classification, sp.Amount, sp.Days))
	}

	return strings.Join(parts, "; ")
}

// Summary renders one line per disbursement for a quick read of the case.
func (s *Service) Summary(p *plan.Plan) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Seed %s | Year end %s | Threshold %s\n\n", p.Seed, p.YearEnd, p.Scoping.ThresholdAmount)

	for _, d := range p.Disbursements {
		scope := " "
		if d.Amount >= p.Scoping.ThresholdAmount {
			scope = "*"
		}

		trap := ""
		if d.TrapKind != "" && d.TrapKind != population.TrapNone {
			trap = " [" + string(d.TrapKind) + "]"
		}

		fmt.Fprintf(&sb, "%s %s | %s | %s | %s | %s%s\n",
			scope, d.PaymentID, d.PaymentDate, d.Payee, d.Amount, classificationLabel(d.AnswerKey), trap)
	}

	return sb.String()
}

// ArchiveName returns a file name for the zipped bundle of p.
func ArchiveName(p *plan.Plan) string {
	safeSeed := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, p.Seed)

	return fmt.Sprintf("case_%s_%s.zip", safeSeed, p.YearEnd.Format("20060102"))
}
