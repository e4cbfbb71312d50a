// Package plan turns a frozen draft into the generation plan handed to the
// rendering, persistence and grading services.
package plan

import (
	"encoding/json"
	"slices"

	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
)

// Classification is the audit conclusion for a disbursement or part of one.
type Classification string

const (
	ProperlyIncluded   Classification = "properlyIncluded"
	ProperlyExcluded   Classification = "properlyExcluded"
	ImproperlyIncluded Classification = "improperlyIncluded"
	ImproperlyExcluded Classification = "improperlyExcluded"
)

// Classify places an invoice in the matrix of service timing against whether it
// was recorded in year-end payables.
func Classify(timing invoice.Timing, recorded bool) Classification {
	switch {
	case timing == invoice.TimingPre && recorded:
		return ProperlyIncluded
	case timing == invoice.TimingPre:
		return ImproperlyExcluded
	case recorded:
		return ImproperlyIncluded
	default:
		return ProperlyExcluded
	}
}

// Split is one share of a disbursement assigned to a classification.
type Split struct {
	Classification Classification `json:"classification"`
	Amount         Money          `json:"amount"`
	Days           int            `json:"days"`
}

// AnswerKey is the grading oracle for one disbursement: either a single
// classification or splits summing to the disbursement amount.
type AnswerKey struct {
	Classification Classification `json:"classification,omitempty"`
	Splits         []Split        `json:"splits,omitempty"`
	Explanation    string         `json:"explanation"`
}

// IsSplit reports whether the key divides the amount across classifications.
func (k AnswerKey) IsSplit() bool {
	return len(k.Splits) > 0
}

// Total returns the amount the key accounts for, or 0 for single classifications.
func (k AnswerKey) Total() Money {
	var sum Money
	for _, s := range k.Splits {
		sum += s.Amount
	}

	return sum
}

func (k AnswerKey) clone() AnswerKey {
	k.Splits = slices.Clone(k.Splits)
	return k
}

// Disbursement is one payment as exported.
type Disbursement struct {
	PaymentID      string              `json:"paymentId"`
	Payee          string              `json:"payee"`
	PaymentDate    Date                `json:"paymentDate"`
	Amount         Money               `json:"amount"`
	InvoiceCount   int                 `json:"invoiceCount"`
	ServiceTiming  invoice.Timing      `json:"serviceTiming"`
	TrapKind       population.TrapKind `json:"trapKind"`
	InvoiceNumbers []string            `json:"invoiceNumbers"`
	AnswerKey      AnswerKey           `json:"answerKey"`
}

// GenerationSpec is what the rendering service consumes.
type GenerationSpec struct {
	TemplateID string          `json:"templateId"`
	Data       json.RawMessage `json:"data"`
}

// DocumentSpec names one reference document to render.
type DocumentSpec struct {
	ID             string         `json:"id"`
	FileName       string         `json:"fileName"`
	GenerationSpec GenerationSpec `json:"generationSpec"`
}

// Scoping holds the sampling parameters for the engagement.
type Scoping struct {
	PerformanceMateriality Money `json:"performanceMateriality"`
	ThresholdAmount        Money `json:"thresholdAmount"`
	ScopePercent           Ratio `json:"scopePercent"`
}

// Plan is the immutable result of one generation.
type Plan struct {
	Seed                   string         `json:"seed"`
	YearEnd                Date           `json:"yearEnd"`
	Disbursements          []Disbursement `json:"disbursements"`
	ReferenceDocumentSpecs []DocumentSpec `json:"referenceDocumentSpecs"`
	Scoping                Scoping        `json:"scoping"`
}

// AnswerKeys returns a copy of every answer key by payment id.
func (p *Plan) AnswerKeys() map[string]AnswerKey {
	out := make(map[string]AnswerKey, len(p.Disbursements))
	for _, d := range p.Disbursements {
		out[d.PaymentID] = d.AnswerKey.clone()
	}

	return out
}

// InScope returns the disbursements at or above the threshold.
func (p *Plan) InScope() []Disbursement {
	var out []Disbursement

	for _, d := range p.Disbursements {
		if d.Amount >= p.Scoping.ThresholdAmount {
			out = append(out, d)
		}
	}

	return out
}

// Document returns the spec with id.
func (p *Plan) Document(id string) (DocumentSpec, bool) {
	i := slices.IndexFunc(p.ReferenceDocumentSpecs, func(d DocumentSpec) bool { return d.ID == id })
	if i < 0 {
		return DocumentSpec{}, false
	}

	return p.ReferenceDocumentSpecs[i], true
}
