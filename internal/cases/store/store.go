package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/cases"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/render"
)

const schema = `
	CREATE TABLE IF NOT EXISTS cases (
		id UUID PRIMARY KEY,
		seed TEXT NOT NULL,
		overrides JSONB NOT NULL,
		plan JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS case_documents (
		case_id UUID NOT NULL REFERENCES cases (id) ON DELETE CASCADE,
		document_id TEXT NOT NULL,
		position INT NOT NULL,
		file_name TEXT NOT NULL,
		template_id TEXT NOT NULL,
		handle_id TEXT,
		handle_url TEXT,
		PRIMARY KEY (case_id, document_id)
	);
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanCase reads a case row. Expected column order: id, seed, overrides, plan,
// created_at, updated_at.
func scanCase(s scanner) (*cases.Case, error) {
	var (
		c                   cases.Case
		overrides, planJSON []byte
	)

	if err := s.Scan(&c.ID, &c.Seed, &overrides, &planJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	var rec overridesRecord
	if err := json.Unmarshal(overrides, &rec); err != nil {
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}

	c.Overrides = rec.overrides()

	c.Plan = new(plan.Plan)
	if err := json.Unmarshal(planJSON, c.Plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}

	return &c, nil
}

const selectCaseColumns = `id, seed, overrides, plan, created_at, updated_at`

func caseLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])

	return int64(h.Sum64())
}

// SaveCase upserts the case and its documents in one transaction. Render
// handles already stored for a document are kept.
func (s *Store) SaveCase(ctx context.Context, c *cases.Case) error {
	overrides, err := json.Marshal(overridesJSON(c.Overrides))
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}

	planJSON, err := json.Marshal(c.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", caseLockKey(c.ID)); err != nil {
		return fmt.Errorf("acquiring case lock: %w", err)
	}

	caseQuery := `
		INSERT INTO cases (id, seed, overrides, plan, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET plan = EXCLUDED.plan, overrides = EXCLUDED.overrides, updated_at = NOW()
		RETURNING created_at, updated_at
	`

	if err := dbTx.QueryRowContext(ctx, caseQuery, c.ID, c.Seed, overrides, planJSON).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("upserting case: %w", err)
	}

	docQuery := `
		INSERT INTO case_documents (case_id, document_id, position, file_name, template_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (case_id, document_id) DO UPDATE
		SET position = EXCLUDED.position, file_name = EXCLUDED.file_name, template_id = EXCLUDED.template_id
		RETURNING handle_id, handle_url
	`

	for i := range c.Documents {
		d := &c.Documents[i]

		err := dbTx.QueryRowContext(ctx, docQuery, c.ID, d.ID, i, d.FileName, d.TemplateID).Scan(&d.HandleID, &d.HandleURL)
		if err != nil {
			return fmt.Errorf("upserting document %s: %w", d.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetCase(ctx context.Context, id uuid.UUID) (*cases.Case, error) {
	query := `SELECT ` + selectCaseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cases.ErrNotFound
		}

		return nil, fmt.Errorf("getting case: %w", err)
	}

	docs, err := s.documents(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Documents = docs

	return c, nil
}

func (s *Store) documents(ctx context.Context, caseID uuid.UUID) ([]cases.Document, error) {
	query := `
		SELECT document_id, file_name, template_id, handle_id, handle_url
		FROM case_documents
		WHERE case_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []cases.Document

	for rows.Next() {
		var d cases.Document
		if err := rows.Scan(&d.ID, &d.FileName, &d.TemplateID, &d.HandleID, &d.HandleURL); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

// ListCases returns every case, newest first, without their documents.
func (s *Store) ListCases(ctx context.Context) ([]*cases.Case, error) {
	query := `SELECT ` + selectCaseColumns + ` FROM cases ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var out []*cases.Case

	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating case rows: %w", err)
	}

	return out, nil
}

func (s *Store) SetDocumentHandle(ctx context.Context, caseID uuid.UUID, documentID string, h render.Handle) error {
	query := `
		UPDATE case_documents
		SET handle_id = $1, handle_url = $2
		WHERE case_id = $3 AND document_id = $4
	`

	var url *string
	if h.URL != "" {
		url = &h.URL
	}

	res, err := s.db.ExecContext(ctx, query, h.ID, url, caseID, documentID)
	if err != nil {
		return fmt.Errorf("setting document handle: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting document handle: %w", err)
	}

	if n == 0 {
		return cases.ErrNotFound
	}

	return nil
}

type overridesRecord struct {
	YearEnd           *plan.Date `json:"yearEnd,omitempty"`
	DisbursementCount int        `json:"disbursementCount,omitempty"`
	VendorCount       int        `json:"vendorCount,omitempty"`
	InvoicesPerVendor int        `json:"invoicesPerVendor,omitempty"`
}

func overridesJSON(o engine.Overrides) overridesRecord {
	r := overridesRecord{
		DisbursementCount: o.DisbursementCount,
		VendorCount:       o.VendorCount,
		InvoicesPerVendor: o.InvoicesPerVendor,
	}

	if o.YearEnd != nil {
		r.YearEnd = new(plan.NewDate(*o.YearEnd))
	}

	return r
}

func (r overridesRecord) overrides() engine.Overrides {
	o := engine.Overrides{
		DisbursementCount: r.DisbursementCount,
		VendorCount:       r.VendorCount,
		InvoicesPerVendor: r.InvoicesPerVendor,
	}

	if r.YearEnd != nil {
		o.YearEnd = new(r.YearEnd.Time)
	}

	return o
}
