package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/fishcost/internal/costing"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()

	seq := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(nil, func() string {
			seq++
			return fmt.Sprintf("run-%d", seq)
		}),
	}
	l := New(append(base, opts...)...)
	require.NoError(t, l.AddSKU(context.Background(), SKU{
		ID:            "box3",
		Name:          "Anchovy IQF 3kg",
		UnitWeightKg:  3,
		PackagingCost: 0.54,
	}))
	return l
}

func receive(t *testing.T, l *Ledger, supplier string, kg, price float64) Lot {
	t.Helper()
	lot, err := l.ReceiveLot(context.Background(), LotInput{Supplier: supplier, Species: "anchovy", Kg: kg, PricePerKg: price})
	require.NoError(t, err)
	return lot
}

func TestReceiveLot_GeneratesIDAndStartsFull(t *testing.T) {
	l := newTestLedger(t)

	lot := receive(t, l, "Kavala Fish", 100, 2.30)

	assert.Regexp(t, regexp.MustCompile(`^LOT-20260314-[0-9A-F]{4}$`), lot.ID)
	assert.Equal(t, 100.0, lot.InitialKg)
	assert.Equal(t, 100.0, lot.RemainingKg)
	assert.Equal(t, LotActive, lot.Status)
	assert.Equal(t, fixedNow, lot.ReceivedAt)
}

func TestReceiveLot_Validation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.ReceiveLot(ctx, LotInput{Kg: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "kg", vErr.Field)

	_, err = l.ReceiveLot(ctx, LotInput{Kg: 10, PricePerKg: -1})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price_per_kg", vErr.Field)

	_, err = l.ReceiveLot(ctx, LotInput{ID: "LOT-A", Kg: 10})
	require.NoError(t, err)
	_, err = l.ReceiveLot(ctx, LotInput{ID: "LOT-A", Kg: 10})
	assert.ErrorIs(t, err, ErrDuplicateLot)
}

func TestActiveLots_ReceiptOrderAndDepletion(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	a := receive(t, l, "A", 10, 2)
	b := receive(t, l, "B", 20, 2)
	c := receive(t, l, "C", 30, 2)

	require.NoError(t, l.Consume(ctx, b.ID, 20))

	active := l.ActiveLots()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, c.ID, active[1].ID)

	depleted, err := l.Lot(b.ID)
	require.NoError(t, err)
	assert.Equal(t, LotDepleted, depleted.Status)
	assert.Len(t, l.Lots(), 3)
}

func TestConsume_NeverDrivesRemainingNegative(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	lot := receive(t, l, "A", 10, 2)

	for _, kg := range []float64{3, 3, 3, 3, 0.5, 0.5, 2} {
		err := l.Consume(ctx, lot.ID, kg)
		current, _ := l.Lot(lot.ID)
		if err != nil {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			assert.Equal(t, kg, stockErr.RequestedKg)
		}
		assert.GreaterOrEqual(t, current.RemainingKg, 0.0)
		assert.LessOrEqual(t, current.RemainingKg, current.InitialKg)
	}

	current, err := l.Lot(lot.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, current.RemainingKg, 1e-9)
}

func TestConsume_UnknownLot(t *testing.T) {
	l := newTestLedger(t)
	assert.ErrorIs(t, l.Consume(context.Background(), "LOT-X", 1), ErrLotNotFound)
}

func TestRecordRun_ComputesCostsAndDecrementsStock(t *testing.T) {
	l := newTestLedger(t)
	lot := receive(t, l, "Kavala Fish", 100, 2.30)

	run, err := l.RecordRun(context.Background(), RunRequest{
		LotID:            lot.ID,
		SKUID:            "box3",
		InputKg:          60,
		OutputUnits:      12,
		TargetGlazingPct: 20,
		ActualGlazingPct: 15,
		Labor:            LaborParams{Enabled: true, Workers: 5, Hours: 2, HourlyRate: 8},
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.InDelta(t, 36, run.OutputKg, 1e-9)
	assert.InDelta(t, 51, run.YieldPct, 1e-9)
	assert.InDelta(t, 138, run.RawCost, 1e-9)
	assert.InDelta(t, 80, run.LaborCost, 1e-9)
	assert.InDelta(t, 6.48, run.PackagingCost, 1e-9)
	assert.InDelta(t, 224.48/36, run.CostPerKg, 1e-9)
	assert.Equal(t, costing.CleanOverRaw, run.YieldDefinition)

	after, err := l.Lot(lot.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40, after.RemainingKg, 1e-9)
	assert.Len(t, l.Runs(), 1)
}

func TestRecordRun_GlazedYieldAndOverrides(t *testing.T) {
	l := newTestLedger(t, WithYieldDefinition(costing.GlazedOverRaw))
	lot := receive(t, l, "A", 100, 2)
	override := 10.0

	run, err := l.RecordRun(context.Background(), RunRequest{
		LotID:             lot.ID,
		AdHocSKU:          &SKU{Name: "bulk 10kg", UnitWeightKg: 10, PackagingCost: 1},
		InputKg:           50,
		OutputUnits:       4,
		ActualGlazingPct:  10,
		Labor:             LaborParams{Enabled: false, Workers: 5, Hours: 8, HourlyRate: 8},
		PackagingOverride: &override,
	})
	require.NoError(t, err)

	assert.True(t, run.AdHoc)
	assert.Equal(t, "adhoc", run.SKU.ID)
	assert.InDelta(t, 80, run.YieldPct, 1e-9)
	assert.Zero(t, run.LaborCost)
	assert.InDelta(t, 10, run.PackagingCost, 1e-9)
	assert.InDelta(t, 110.0/40, run.CostPerKg, 1e-9)
}

func TestRecordRun_RejectsWithoutSideEffects(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	lot := receive(t, l, "A", 50, 2)

	cases := map[string]RunRequest{
		"insufficient stock": {LotID: lot.ID, SKUID: "box3", InputKg: 50.5, OutputUnits: 5},
		"zero input":         {LotID: lot.ID, SKUID: "box3", InputKg: 0, OutputUnits: 5},
		"zero units":         {LotID: lot.ID, SKUID: "box3", InputKg: 10, OutputUnits: 0},
		"bad glazing":        {LotID: lot.ID, SKUID: "box3", InputKg: 10, OutputUnits: 1, ActualGlazingPct: 100},
		"unknown sku":        {LotID: lot.ID, SKUID: "box9", InputKg: 10, OutputUnits: 1},
		"unknown lot":        {LotID: "LOT-X", SKUID: "box3", InputKg: 10, OutputUnits: 1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.RecordRun(ctx, req)
			require.Error(t, err)

			current, err := l.Lot(lot.ID)
			require.NoError(t, err)
			assert.Equal(t, 50.0, current.RemainingKg)
			assert.Empty(t, l.Runs())
		})
	}

	_, err := l.RecordRun(ctx, cases["insufficient stock"])
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 50.0, stockErr.RemainingKg)
}

type failingJournal struct {
	NopJournal
	err error
}

func (j failingJournal) RecordRun(context.Context, Run, float64) error { return j.err }

func TestRecordRun_JournalFailureLeavesLedgerUntouched(t *testing.T) {
	boom := errors.New("disk full")
	l := newTestLedger(t, WithJournal(failingJournal{err: boom}))
	lot := receive(t, l, "A", 50, 2)

	_, err := l.RecordRun(context.Background(), RunRequest{LotID: lot.ID, SKUID: "box3", InputKg: 10, OutputUnits: 2})
	require.ErrorIs(t, err, boom)

	current, err := l.Lot(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, current.RemainingKg)
	assert.Empty(t, l.Runs())
}

func TestRunsKeepSKUSnapshotAfterCatalogChanges(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	lot := receive(t, l, "A", 50, 2)

	_, err := l.RecordRun(ctx, RunRequest{LotID: lot.ID, SKUID: "box3", InputKg: 10, OutputUnits: 2})
	require.NoError(t, err)

	require.NoError(t, l.UpdateSKU(ctx, SKU{ID: "box3", Name: "renamed", UnitWeightKg: 5, PackagingCost: 2}))
	require.NoError(t, l.RemoveSKU(ctx, "box3"))

	runs := l.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Anchovy IQF 3kg", runs[0].SKU.Name)
	assert.Equal(t, 3.0, runs[0].SKU.UnitWeightKg)

	_, err = l.SKU("box3")
	assert.ErrorIs(t, err, ErrSKUNotFound)
	assert.ErrorIs(t, l.RemoveSKU(ctx, "box3"), ErrSKUNotFound)
}

func TestAddSKU_RejectsDuplicatesAndZeroWeight(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	assert.ErrorIs(t, l.AddSKU(ctx, SKU{ID: "box3", UnitWeightKg: 3}), ErrDuplicateSKU)

	var vErr *ValidationError
	require.ErrorAs(t, l.AddSKU(ctx, SKU{ID: "zero", UnitWeightKg: 0}), &vErr)
	assert.Equal(t, "unit_weight_kg", vErr.Field)
	assert.ErrorIs(t, l.UpdateSKU(ctx, SKU{ID: "nope", UnitWeightKg: 1}), ErrSKUNotFound)
	assert.Len(t, l.SKUs(), 1)
}

func TestRestore_RoundTripsSnapshot(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	lot := receive(t, l, "A", 50, 2)
	_, err := l.RecordRun(ctx, RunRequest{LotID: lot.ID, SKUID: "box3", InputKg: 50, OutputUnits: 10})
	require.NoError(t, err)

	restored, err := Restore(l.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, l.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.ActiveLots())
}

func TestRestore_RejectsCorruptLot(t *testing.T) {
	_, err := Restore(State{Lots: []Lot{{ID: "LOT-1", InitialKg: 5, RemainingKg: 6}}})
	assert.Error(t, err)
}
