// Package cases persists generated plans and tracks their rendered documents.
package cases

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
)

var ErrNotFound = errors.New("case not found")

// namespace scopes case IDs derived from seeds.
var namespace = uuid.MustParse("6f1d3c2a-8b4e-5f7a-9c0d-2e3f4a5b6c7d")

// Case is a persisted generation.
type Case struct {
	ID        uuid.UUID
	Seed      string
	Overrides engine.Overrides
	Plan      *plan.Plan
	Documents []Document
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Document tracks the rendering state of one reference document.
type Document struct {
	ID         string
	FileName   string
	TemplateID string
	HandleID   *string
	HandleURL  *string
}

func (d Document) Rendered() bool {
	return d.HandleID != nil
}

// Pending returns the documents without a render handle.
func (c *Case) Pending() []Document {
	var out []Document

	for _, d := range c.Documents {
		if !d.Rendered() {
			out = append(out, d)
		}
	}

	return out
}

// ID derives the case identifier from the seed and the overrides, so the same
// request always maps to the same rows.
func ID(seed string, o engine.Overrides) uuid.UUID {
	ye := ""
	if o.YearEnd != nil {
		ye = o.YearEnd.Format(calendar.Layout)
	}

	key := fmt.Sprintf("%s\x00%s\x00%d\x00%d\x00%d", seed, ye, o.DisbursementCount, o.VendorCount, o.InvoicesPerVendor)

	return uuid.NewSHA1(namespace, []byte(key))
}

func documentsFor(p *plan.Plan) []Document {
	docs := make([]Document, len(p.ReferenceDocumentSpecs))
	for i, s := range p.ReferenceDocumentSpecs {
		docs[i] = Document{
			ID:         s.ID,
			FileName:   s.FileName,
			TemplateID: s.GenerationSpec.TemplateID,
		}
	}

	return docs
}
