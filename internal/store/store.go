// Package store persists session ledgers in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/deal"
	"github.com/Simplici0/fishcost/internal/ledger"
)

const timeLayout = time.RFC3339Nano

// ErrRowMissing is returned when an update matched no row.
var ErrRowMissing = errors.New("row missing")

// Store reads and writes ledger state.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSession creates the session row if needed and reports whether it was created.
// An existing session has its last_seen_at refreshed.
func (s *Store) EnsureSession(ctx context.Context, sessionID string) (bool, error) {
	now := s.now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, last_seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sessionID, now, now)
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = ? WHERE id = ?`, now, sessionID); err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	return false, nil
}

// DeleteSession removes a session and everything recorded under it.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadState reads the lots, catalog and runs of a session in recording order.
func (s *Store) LoadState(ctx context.Context, sessionID string) (ledger.State, error) {
	var state ledger.State
	var err error

	if state.Lots, err = s.loadLots(ctx, sessionID); err != nil {
		return ledger.State{}, err
	}
	if state.SKUs, err = s.loadSKUs(ctx, `
		SELECT id, name, unit_weight_kg, packaging_cost, description
		FROM skus
		WHERE session_id = ?
		ORDER BY id
	`, sessionID); err != nil {
		return ledger.State{}, err
	}
	if state.Runs, err = s.loadRuns(ctx, sessionID); err != nil {
		return ledger.State{}, err
	}
	return state, nil
}

func (s *Store) loadLots(ctx context.Context, sessionID string) ([]ledger.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, received_at, supplier, species, initial_kg, remaining_kg, price_per_kg
		FROM lots
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query lots: %w", err)
	}
	defer rows.Close()

	lots := make([]ledger.Lot, 0)
	for rows.Next() {
		var lot ledger.Lot
		var receivedAt string
		if err := rows.Scan(&lot.ID, &receivedAt, &lot.Supplier, &lot.Species, &lot.InitialKg, &lot.RemainingKg, &lot.PricePerKg); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		if lot.ReceivedAt, err = time.Parse(timeLayout, receivedAt); err != nil {
			return nil, fmt.Errorf("parse lot %s received_at: %w", lot.ID, err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lots: %w", err)
	}
	return lots, nil
}

func (s *Store) loadSKUs(ctx context.Context, query string, args ...any) ([]ledger.SKU, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query skus: %w", err)
	}
	defer rows.Close()

	skus := make([]ledger.SKU, 0)
	for rows.Next() {
		var sku ledger.SKU
		if err := rows.Scan(&sku.ID, &sku.Name, &sku.UnitWeightKg, &sku.PackagingCost, &sku.Description); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skus: %w", err)
	}
	return skus, nil
}

func (s *Store) loadRuns(ctx context.Context, sessionID string) ([]ledger.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, recorded_at, lot_id, sku_json, adhoc, input_kg, output_units, output_kg,
			target_glazing_pct, actual_glazing_pct, yield_definition, yield_pct,
			raw_cost, labor_cost, packaging_cost, total_cost, cost_per_kg
		FROM production_runs
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query production runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ledger.Run, 0)
	for rows.Next() {
		var (
			run        ledger.Run
			recordedAt string
			skuJSON    string
			yieldDef   string
		)
		if err := rows.Scan(
			&run.ID, &recordedAt, &run.LotID, &skuJSON, &run.AdHoc, &run.InputKg, &run.OutputUnits, &run.OutputKg,
			&run.TargetGlazingPct, &run.ActualGlazingPct, &yieldDef, &run.YieldPct,
			&run.RawCost, &run.LaborCost, &run.PackagingCost, &run.TotalCost, &run.CostPerKg,
		); err != nil {
			return nil, fmt.Errorf("scan production run: %w", err)
		}
		if run.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse run %s recorded_at: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(skuJSON), &run.SKU); err != nil {
			return nil, fmt.Errorf("decode run %s sku snapshot: %w", run.ID, err)
		}
		run.YieldDefinition = costing.YieldDefinition(yieldDef)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate production runs: %w", err)
	}
	return runs, nil
}

// SKUTemplates lists the active catalog templates new sessions start from.
func (s *Store) SKUTemplates(ctx context.Context) ([]ledger.SKU, error) {
	return s.loadSKUs(ctx, `
		SELECT id, name, unit_weight_kg, packaging_cost, description
		FROM sku_templates
		WHERE active
		ORDER BY id
	`)
}

// PaymentTerms lists the payment-delay table.
func (s *Store) PaymentTerms(ctx context.Context) ([]deal.PaymentTerm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, label, days, finance_rate
		FROM payment_terms
		ORDER BY days, code
	`)
	if err != nil {
		return nil, fmt.Errorf("query payment terms: %w", err)
	}
	defer rows.Close()

	terms := make([]deal.PaymentTerm, 0)
	for rows.Next() {
		var term deal.PaymentTerm
		if err := rows.Scan(&term.Code, &term.Label, &term.Days, &term.FinanceRate); err != nil {
			return nil, fmt.Errorf("scan payment term: %w", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment terms: %w", err)
	}
	return terms, nil
}
