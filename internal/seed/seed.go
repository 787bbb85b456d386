package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/fishcost/internal/deal"
	"github.com/Simplici0/fishcost/internal/ledger"
)

// DefaultSKUs is the catalog every new session starts from.
func DefaultSKUs() []ledger.SKU {
	return []ledger.SKU{
		{ID: "box3", Name: "Headless anchovy IQF 3 kg", UnitWeightKg: 3, PackagingCost: 0.54, Description: "Export carton"},
		{ID: "bag1", Name: "Headless anchovy IQF 1 kg", UnitWeightKg: 1, PackagingCost: 0.22, Description: "Retail bag"},
		{ID: "bulk10", Name: "Bulk block 10 kg", UnitWeightKg: 10, PackagingCost: 0.90, Description: "Food service"},
	}
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, sku := range DefaultSKUs() {
		if err := ensureSKUTemplate(ctx, tx, sku, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, term := range deal.DefaultTerms() {
		if err := ensurePaymentTerm(ctx, tx, term, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSKUTemplate(ctx context.Context, tx *sql.Tx, sku ledger.SKU, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sku_templates WHERE id = ? LIMIT 1)`, sku.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check sku template %s existence: %w", sku.ID, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sku_templates (id, name, unit_weight_kg, packaging_cost, description, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sku.ID, sku.Name, sku.UnitWeightKg, sku.PackagingCost, sku.Description, true); err != nil {
		return fmt.Errorf("insert sku template %s: %w", sku.ID, err)
	}
	stats.Inserts++
	return nil
}

func ensurePaymentTerm(ctx context.Context, tx *sql.Tx, term deal.PaymentTerm, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM payment_terms WHERE code = ? LIMIT 1)`, term.Code).Scan(&exists); err != nil {
		return fmt.Errorf("check payment term %s existence: %w", term.Code, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_terms (code, label, days, finance_rate)
		VALUES (?, ?, ?, ?)
	`, term.Code, term.Label, term.Days, term.FinanceRate); err != nil {
		return fmt.Errorf("insert payment term %s: %w", term.Code, err)
	}
	stats.Inserts++
	return nil
}
