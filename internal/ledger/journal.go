package ledger

import "context"

// Journal receives every ledger mutation before it is applied in memory. If a journal
// call fails the ledger is left untouched, so a persisted journal and the in-memory
// state never diverge.
type Journal interface {
	ReceiveLot(ctx context.Context, lot Lot) error
	Consume(ctx context.Context, lotID string, remainingKg float64) error
	RecordRun(ctx context.Context, run Run, lotRemainingKg float64) error
	PutSKU(ctx context.Context, sku SKU) error
	RemoveSKU(ctx context.Context, id string) error
}

// NopJournal discards every entry.
type NopJournal struct{}

func (NopJournal) ReceiveLot(context.Context, Lot) error          { return nil }
func (NopJournal) Consume(context.Context, string, float64) error { return nil }
func (NopJournal) RecordRun(context.Context, Run, float64) error  { return nil }
func (NopJournal) PutSKU(context.Context, SKU) error              { return nil }
func (NopJournal) RemoveSKU(context.Context, string) error        { return nil }
