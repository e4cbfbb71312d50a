package plan

// PeriodData is an inclusive service period.
type PeriodData struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// LineItemData is one invoice line.
type LineItemData struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Qty         int    `json:"qty"`
	UnitPrice   Money  `json:"unitPrice"`
	Amount      Money  `json:"amount"`
}

// InvoiceData is the payload of both invoice templates.
type InvoiceData struct {
	InvoiceNumber string         `json:"invoiceNumber"`
	Vendor        string         `json:"vendor"`
	PaymentID     string         `json:"paymentId"`
	InvoiceDate   Date           `json:"invoiceDate"`
	ServiceDate   *Date          `json:"serviceDate,omitempty"`
	ServicePeriod *PeriodData    `json:"servicePeriod,omitempty"`
	LineItems     []LineItemData `json:"lineItems"`
	Subtotal      Money          `json:"subtotal"`
	TaxRate       Ratio          `json:"taxRate"`
	Tax           Money          `json:"tax"`
	Shipping      Money          `json:"shipping"`
	Total         Money          `json:"total"`
	// AllocationResidual is non-zero when the invoice fell back to a nearest fit.
	AllocationResidual Money `json:"allocationResidual,omitempty"`
}

// APAgingRow is one recorded invoice on the payables listing.
type APAgingRow struct {
	Vendor          string `json:"vendor"`
	InvoiceNumber   string `json:"invoiceNumber"`
	InvoiceDate     Date   `json:"invoiceDate"`
	DaysOutstanding int    `json:"daysOutstanding"`
	Amount          Money  `json:"amount"`
}

// APAgingData is the payload of the payables listing.
type APAgingData struct {
	AsOf  Date         `json:"asOf"`
	Rows  []APAgingRow `json:"rows"`
	Total Money        `json:"total"`
}

// DisbursementRow is one payment on the check register.
type DisbursementRow struct {
	PaymentID   string `json:"paymentId"`
	Payee       string `json:"payee"`
	PaymentDate Date   `json:"paymentDate"`
	Amount      Money  `json:"amount"`
}

// DisbursementListingData is the payload of the subsequent disbursements listing.
type DisbursementListingData struct {
	PeriodStart Date              `json:"periodStart"`
	PeriodEnd   Date              `json:"periodEnd"`
	Rows        []DisbursementRow `json:"rows"`
	Total       Money             `json:"total"`
}
