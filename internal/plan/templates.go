package plan

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownTemplate is returned for template identifiers outside the registry.
var ErrUnknownTemplate = errors.New("unknown template")

const (
	TemplateInvoiceStandard      = "invoice-standard"
	TemplateInvoiceServicePeriod = "invoice-service-period"
	TemplateAPAgingListing       = "ap-aging-listing"
	TemplateDisbursementListing  = "disbursement-listing"
)

// Template describes a document layout the rendering service knows.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var registry = []Template{
	{
		ID:          TemplateInvoiceStandard,
		Name:        "Vendor invoice",
		Description: "Invoice for goods or services delivered on a single date.",
	},
	{
		ID:          TemplateInvoiceServicePeriod,
		Name:        "Vendor invoice (service period)",
		Description: "Invoice billing a service period with start and end dates.",
	},
	{
		ID:          TemplateAPAgingListing,
		Name:        "Accounts payable listing",
		Description: "Year-end listing of recorded vendor invoices.",
	},
	{
		ID:          TemplateDisbursementListing,
		Name:        "Subsequent disbursements listing",
		Description: "Check register of payments made after year-end.",
	},
}

// Templates returns the registry.
func Templates() []Template {
	return slices.Clone(registry)
}

// LookupTemplate returns the registered template with id.
func LookupTemplate(id string) (Template, error) {
	i := slices.IndexFunc(registry, func(t Template) bool { return t.ID == id })
	if i < 0 {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}

	return registry[i], nil
}
