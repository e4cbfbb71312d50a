package cases

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/cases"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

type overridesPayload struct {
	YearEnd           *plan.Date `json:"year_end,omitempty"`
	DisbursementCount int        `json:"disbursement_count,omitempty"`
	VendorCount       int        `json:"vendor_count,omitempty"`
	InvoicesPerVendor int        `json:"invoices_per_vendor,omitempty"`
}

type documentResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	TemplateID string `json:"template_id"`
	Rendered   bool   `json:"rendered"`
	HandleID   string `json:"handle_id,omitempty"`
	HandleURL  string `json:"handle_url,omitempty"`
}

type caseSummaryResponse struct {
	ID            uuid.UUID        `json:"id"`
	Seed          string           `json:"seed"`
	Overrides     overridesPayload `json:"overrides"`
	YearEnd       plan.Date        `json:"year_end"`
	Disbursements int              `json:"disbursements"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty"`
}

type caseResponse struct {
	caseSummaryResponse
	Plan      *plan.Plan         `json:"plan"`
	Documents []documentResponse `json:"documents"`
}

type exhaustedResponse struct {
	Error    string             `json:"error"`
	Attempts int                `json:"attempts"`
	Codes    []validation.Code  `json:"codes"`
	Issues   []validation.Issue `json:"issues"`
}

func toOverridesPayload(c *cases.Case) overridesPayload {
	o := overridesPayload{
		DisbursementCount: c.Overrides.DisbursementCount,
		VendorCount:       c.Overrides.VendorCount,
		InvoicesPerVendor: c.Overrides.InvoicesPerVendor,
	}

	if c.Overrides.YearEnd != nil {
		o.YearEnd = new(plan.NewDate(*c.Overrides.YearEnd))
	}

	return o
}

func toSummary(c *cases.Case) caseSummaryResponse {
	resp := caseSummaryResponse{
		ID:        c.ID,
		Seed:      c.Seed,
		Overrides: toOverridesPayload(c),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.Plan != nil {
		resp.YearEnd = c.Plan.YearEnd
		resp.Disbursements = len(c.Plan.Disbursements)
	}

	return resp
}

func toResponse(c *cases.Case) caseResponse {
	docs := make([]documentResponse, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = documentResponse{
			ID:         d.ID,
			FileName:   d.FileName,
			TemplateID: d.TemplateID,
			Rendered:   d.Rendered(),
		}

		if d.HandleID != nil {
			docs[i].HandleID = *d.HandleID
		}

		if d.HandleURL != nil {
			docs[i].HandleURL = *d.HandleURL
		}
	}

	return caseResponse{
		caseSummaryResponse: toSummary(c),
		Plan:                c.Plan,
		Documents:           docs,
	}
}

func toSummaryList(cs []*cases.Case) []caseSummaryResponse {
	resp := make([]caseSummaryResponse, len(cs))
	for i, c := range cs {
		resp[i] = toSummary(c)
	}

	return resp
}
