package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/fishcost/internal/ledger"
)

// Journal returns a ledger.Journal that writes through to sessionID.
func (s *Store) Journal(sessionID string) ledger.Journal {
	return &sessionJournal{store: s, sessionID: sessionID}
}

type sessionJournal struct {
	store     *Store
	sessionID string
}

func (j *sessionJournal) ReceiveLot(ctx context.Context, lot ledger.Lot) error {
	_, err := j.store.db.ExecContext(ctx, `
		INSERT INTO lots (session_id, id, seq, received_at, supplier, species, initial_kg, remaining_kg, price_per_kg)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM lots WHERE session_id = ?), ?, ?, ?, ?, ?, ?)
	`,
		j.sessionID, lot.ID, j.sessionID, lot.ReceivedAt.UTC().Format(timeLayout),
		lot.Supplier, lot.Species, lot.InitialKg, lot.RemainingKg, lot.PricePerKg,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (j *sessionJournal) Consume(ctx context.Context, lotID string, remainingKg float64) error {
	return updateRemaining(ctx, j.store.db, j.sessionID, lotID, remainingKg)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateRemaining(ctx context.Context, db execer, sessionID, lotID string, remainingKg float64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE lots SET remaining_kg = ? WHERE session_id = ? AND id = ?
	`, remainingKg, sessionID, lotID)
	if err != nil {
		return fmt.Errorf("update lot remaining: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lot remaining: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update lot %s: %w", lotID, ErrRowMissing)
	}
	return nil
}

// RecordRun decrements the lot and inserts the run in one transaction.
func (j *sessionJournal) RecordRun(ctx context.Context, run ledger.Run, lotRemainingKg float64) error {
	skuJSON, err := json.Marshal(run.SKU)
	if err != nil {
		return fmt.Errorf("encode sku snapshot: %w", err)
	}

	tx, err := j.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}

	if err := updateRemaining(ctx, tx, j.sessionID, run.LotID, lotRemainingKg); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO production_runs (
			session_id, id, seq, recorded_at, lot_id, sku_json, adhoc, input_kg, output_units, output_kg,
			target_glazing_pct, actual_glazing_pct, yield_definition, yield_pct,
			raw_cost, labor_cost, packaging_cost, total_cost, cost_per_kg
		) VALUES (
			?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM production_runs WHERE session_id = ?), ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?
		)
	`,
		j.sessionID, run.ID, j.sessionID, run.RecordedAt.UTC().Format(timeLayout), run.LotID, string(skuJSON), run.AdHoc,
		run.InputKg, run.OutputUnits, run.OutputKg,
		run.TargetGlazingPct, run.ActualGlazingPct, string(run.YieldDefinition), run.YieldPct,
		run.RawCost, run.LaborCost, run.PackagingCost, run.TotalCost, run.CostPerKg,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert production run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run transaction: %w", err)
	}
	return nil
}

func (j *sessionJournal) PutSKU(ctx context.Context, sku ledger.SKU) error {
	_, err := j.store.db.ExecContext(ctx, `
		INSERT INTO skus (session_id, id, name, unit_weight_kg, packaging_cost, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, id) DO UPDATE SET
			name = excluded.name,
			unit_weight_kg = excluded.unit_weight_kg,
			packaging_cost = excluded.packaging_cost,
			description = excluded.description
	`, j.sessionID, sku.ID, sku.Name, sku.UnitWeightKg, sku.PackagingCost, sku.Description)
	if err != nil {
		return fmt.Errorf("upsert sku: %w", err)
	}
	return nil
}

func (j *sessionJournal) RemoveSKU(ctx context.Context, id string) error {
	if _, err := j.store.db.ExecContext(ctx, `DELETE FROM skus WHERE session_id = ? AND id = ?`, j.sessionID, id); err != nil {
		return fmt.Errorf("delete sku: %w", err)
	}
	return nil
}
