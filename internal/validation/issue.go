// Package validation checks a draft population against the rules a usable case
// must satisfy.
package validation

import (
	"slices"
)

// Code identifies one kind of rule violation. The set is closed; AllCodes lists it.
type Code string

const (
	CodeCountTooLow            Code = "COUNT_TOO_LOW"
	CodeCountTooHigh           Code = "COUNT_TOO_HIGH"
	CodePayeeVariation         Code = "PAYEE_VARIATION"
	CodeAmountVariation        Code = "AMOUNT_VARIATION"
	CodePaymentDateWindow      Code = "PAYMENT_DATE_WINDOW"
	CodeDuplicatePaymentDate   Code = "DUPLICATE_PAYMENT_DATE"
	CodeMissingPayee           Code = "MISSING_PAYEE"
	CodeMissingInvoices        Code = "MISSING_INVOICES"
	CodeAmountMismatch         Code = "AMOUNT_MISMATCH"
	CodeInvoiceMissingLines    Code = "INVOICE_MISSING_LINES"
	CodeInvoiceTaxRate         Code = "INVOICE_TAX_RATE"
	CodeInvoiceShipping        Code = "INVOICE_SHIPPING"
	CodeInvoiceTotal           Code = "INVOICE_TOTAL"
	CodeInvoiceDate            Code = "INVOICE_DATE"
	CodeMissingInvoiceNumber   Code = "MISSING_INVOICE_NUMBER"
	CodeDuplicateInvoiceNumber Code = "DUPLICATE_INVOICE_NUMBER"
	CodeMissingTimingTrap      Code = "MISSING_TIMING_TRAP"
	CodeDuplicateTimingTrap    Code = "DUPLICATE_TIMING_TRAP"
	CodeAllocationTrap         Code = "ALLOCATION_TRAP"
)

var allCodes = []Code{
	CodeCountTooLow,
	CodeCountTooHigh,
	CodePayeeVariation,
	CodeAmountVariation,
	CodePaymentDateWindow,
	CodeDuplicatePaymentDate,
	CodeMissingPayee,
	CodeMissingInvoices,
	CodeAmountMismatch,
	CodeInvoiceMissingLines,
	CodeInvoiceTaxRate,
	CodeInvoiceShipping,
	CodeInvoiceTotal,
	CodeInvoiceDate,
	CodeMissingInvoiceNumber,
	CodeDuplicateInvoiceNumber,
	CodeMissingTimingTrap,
	CodeDuplicateTimingTrap,
	CodeAllocationTrap,
}

// AllCodes returns every issue code in a fixed order.
func AllCodes() []Code {
	return slices.Clone(allCodes)
}

// IsValid reports whether c is one of the known codes.
func (c Code) IsValid() bool {
	return slices.Contains(allCodes, c)
}

func (c Code) String() string {
	return string(c)
}

// Issue is one detected violation. PaymentID is empty for population-wide issues.
type Issue struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	PaymentID string `json:"paymentId,omitempty"`
}

// Codes returns the distinct codes in issues, in AllCodes order. Codes outside
// the known set follow in first-seen order.
func Codes(issues []Issue) []Code {
	var out []Code

	for _, c := range allCodes {
		if slices.ContainsFunc(issues, func(i Issue) bool { return i.Code == c }) {
			out = append(out, c)
		}
	}

	for _, i := range issues {
		if !i.Code.IsValid() && !slices.Contains(out, i.Code) {
			out = append(out, i.Code)
		}
	}

	return out
}

// ForCode returns the issues carrying code c.
func ForCode(issues []Issue, c Code) []Issue {
	var out []Issue

	for _, i := range issues {
		if i.Code == c {
			out = append(out, i)
		}
	}

	return out
}
