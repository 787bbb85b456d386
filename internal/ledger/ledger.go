// Package ledger tracks raw-material lots, the SKU catalog and the append-only log of
// production runs for one session. A production run and the stock it consumes are
// recorded together or not at all.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/fishcost/internal/costing"
)

// Ledger is the inventory and production log of one session. It is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	lots     []*Lot
	lotIndex map[string]*Lot
	catalog  *Catalog
	runs     []Run

	journal  Journal
	logger   *zap.Logger
	now      func() time.Time
	lotID    func(time.Time) string
	runID    func() string
	yieldDef costing.YieldDefinition
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithJournal persists mutations through j.
func WithJournal(j Journal) Option {
	return func(l *Ledger) {
		if j != nil {
			l.journal = j
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs overrides lot and run identifier generation.
func WithIDs(lotID func(time.Time) string, runID func() string) Option {
	return func(l *Ledger) {
		if lotID != nil {
			l.lotID = lotID
		}
		if runID != nil {
			l.runID = runID
		}
	}
}

// WithYieldDefinition sets the yield definition used when a run request names none.
func WithYieldDefinition(def costing.YieldDefinition) Option {
	return func(l *Ledger) {
		if def != "" {
			l.yieldDef = def
		}
	}
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		lotIndex: make(map[string]*Lot),
		catalog:  &Catalog{skus: make(map[string]SKU)},
		journal:  NopJournal{},
		logger:   zap.NewNop(),
		now:      time.Now,
		lotID:    NewLotID,
		runID:    NewRunID,
		yieldDef: costing.CleanOverRaw,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State is a full copy of a ledger, used for persistence and restore.
type State struct {
	Lots []Lot `json:"lots"`
	SKUs []SKU `json:"skus"`
	Runs []Run `json:"runs"`
}

// Restore rebuilds a ledger from state without writing to the journal.
func Restore(state State, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	for _, lot := range state.Lots {
		if _, ok := l.lotIndex[lot.ID]; ok {
			return nil, fmt.Errorf("restore lot %s: %w", lot.ID, ErrDuplicateLot)
		}
		if lot.RemainingKg < 0 || lot.RemainingKg > lot.InitialKg {
			return nil, fmt.Errorf("restore lot %s: remaining %.3f outside [0, %.3f]", lot.ID, lot.RemainingKg, lot.InitialKg)
		}
		lot := lot
		lot.Status = statusFor(lot.RemainingKg)
		l.lots = append(l.lots, &lot)
		l.lotIndex[lot.ID] = &lot
	}
	for _, sku := range state.SKUs {
		if err := l.catalog.Add(sku); err != nil {
			return nil, fmt.Errorf("restore sku %s: %w", sku.ID, err)
		}
	}
	l.runs = append(l.runs, state.Runs...)
	return l, nil
}

// Snapshot copies the current state.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return State{
		Lots: l.lotsLocked(false),
		SKUs: l.catalog.List(),
		Runs: append([]Run(nil), l.runs...),
	}
}

// ReceiveLot registers a new lot with its full weight remaining.
func (l *Ledger) ReceiveLot(ctx context.Context, in LotInput) (Lot, error) {
	if err := in.validate(); err != nil {
		return Lot{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = l.now()
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = l.lotID(in.ReceivedAt)
	}
	if _, ok := l.lotIndex[id]; ok {
		return Lot{}, fmt.Errorf("%w: %s", ErrDuplicateLot, id)
	}

	lot := Lot{
		ID:          id,
		ReceivedAt:  in.ReceivedAt,
		Supplier:    strings.TrimSpace(in.Supplier),
		Species:     strings.TrimSpace(in.Species),
		InitialKg:   in.Kg,
		RemainingKg: in.Kg,
		PricePerKg:  in.PricePerKg,
		Status:      LotActive,
	}
	if err := l.journal.ReceiveLot(ctx, lot); err != nil {
		return Lot{}, fmt.Errorf("journal lot %s: %w", id, err)
	}

	l.lots = append(l.lots, &lot)
	l.lotIndex[id] = &lot
	l.logger.Info("lot received",
		zap.String("lot_id", id),
		zap.String("supplier", lot.Supplier),
		zap.Float64("kg", lot.InitialKg),
	)
	return lot, nil
}

// Lot returns a copy of one lot.
func (l *Ledger) Lot(id string) (Lot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lot, ok := l.lotIndex[id]
	if !ok {
		return Lot{}, fmt.Errorf("%w: %s", ErrLotNotFound, id)
	}
	return *lot, nil
}

// Lots returns every lot in receipt order.
func (l *Ledger) Lots() []Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lotsLocked(false)
}

// ActiveLots returns lots with stock remaining, in receipt order.
func (l *Ledger) ActiveLots() []Lot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lotsLocked(true)
}

func (l *Ledger) lotsLocked(activeOnly bool) []Lot {
	out := make([]Lot, 0, len(l.lots))
	for _, lot := range l.lots {
		if activeOnly && lot.RemainingKg <= 0 {
			continue
		}
		out = append(out, *lot)
	}
	return out
}

// Consume takes kg out of a lot. It is the stock primitive RecordRun builds on; callers
// that need stock and the production log to agree go through RecordRun instead.
func (l *Ledger) Consume(ctx context.Context, lotID string, kg float64) error {
	if kg <= 0 {
		return invalid("kg", "must be greater than 0")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lot, remaining, err := l.reserveLocked(lotID, kg)
	if err != nil {
		return err
	}
	if err := l.journal.Consume(ctx, lotID, remaining); err != nil {
		return fmt.Errorf("journal consume %s: %w", lotID, err)
	}
	lot.RemainingKg = remaining
	lot.Status = statusFor(remaining)
	return nil
}

// reserveLocked checks that lotID can cover kg and returns the remaining weight after
// the withdrawal without applying it.
func (l *Ledger) reserveLocked(lotID string, kg float64) (*Lot, float64, error) {
	lot, ok := l.lotIndex[lotID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrLotNotFound, lotID)
	}
	if kg > lot.RemainingKg {
		return nil, 0, &InsufficientStockError{LotID: lotID, RequestedKg: kg, RemainingKg: lot.RemainingKg}
	}
	remaining := lot.RemainingKg - kg
	if remaining < 0 {
		remaining = 0
	}
	return lot, remaining, nil
}

// RecordRun prices a production run, decrements its source lot and appends it to the
// log. Nothing changes unless every step succeeds.
func (l *Ledger) RecordRun(ctx context.Context, req RunRequest) (Run, error) {
	if err := req.validate(); err != nil {
		return Run{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sku, adhoc, err := l.resolveSKULocked(req)
	if err != nil {
		return Run{}, err
	}
	lot, remaining, err := l.reserveLocked(req.LotID, req.InputKg)
	if err != nil {
		return Run{}, err
	}

	def := req.YieldDefinition
	if def == "" {
		def = l.yieldDef
	}
	run := Run{
		ID:               l.runID(),
		RecordedAt:       l.now(),
		LotID:            lot.ID,
		SKU:              sku,
		AdHoc:            adhoc,
		InputKg:          req.InputKg,
		OutputUnits:      req.OutputUnits,
		TargetGlazingPct: req.TargetGlazingPct,
		ActualGlazingPct: req.ActualGlazingPct,
		YieldDefinition:  def,
	}
	run.price(lot.PricePerKg, req.Labor, req.PackagingOverride)

	if err := l.journal.RecordRun(ctx, run, remaining); err != nil {
		return Run{}, fmt.Errorf("journal run for lot %s: %w", lot.ID, err)
	}

	lot.RemainingKg = remaining
	lot.Status = statusFor(remaining)
	l.runs = append(l.runs, run)

	l.logger.Info("production run recorded",
		zap.String("run_id", run.ID),
		zap.String("lot_id", lot.ID),
		zap.String("sku_id", sku.ID),
		zap.Float64("input_kg", run.InputKg),
		zap.Float64("yield_pct", run.YieldPct),
		zap.Float64("cost_per_kg", run.CostPerKg),
	)
	return run, nil
}

func (l *Ledger) resolveSKULocked(req RunRequest) (SKU, bool, error) {
	if req.AdHocSKU != nil {
		sku := *req.AdHocSKU
		if sku.ID == "" {
			sku.ID = "adhoc"
		}
		if err := sku.Validate(); err != nil {
			return SKU{}, false, err
		}
		return sku, true, nil
	}
	if req.SKUID == "" {
		return SKU{}, false, invalid("sku_id", "is required")
	}
	sku, ok := l.catalog.Get(req.SKUID)
	if !ok {
		return SKU{}, false, fmt.Errorf("%w: %s", ErrSKUNotFound, req.SKUID)
	}
	return sku, false, nil
}

// Runs returns the production log in recording order.
func (l *Ledger) Runs() []Run {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Run(nil), l.runs...)
}

// AddSKU registers a catalog entry.
func (l *Ledger) AddSKU(ctx context.Context, sku SKU) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sku.ID = strings.TrimSpace(sku.ID)
	if err := sku.Validate(); err != nil {
		return err
	}
	if _, ok := l.catalog.Get(sku.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, sku.ID)
	}
	if err := l.journal.PutSKU(ctx, sku); err != nil {
		return fmt.Errorf("journal sku %s: %w", sku.ID, err)
	}
	return l.catalog.Add(sku)
}

// UpdateSKU replaces a catalog entry. Recorded runs keep their snapshot.
func (l *Ledger) UpdateSKU(ctx context.Context, sku SKU) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sku.ID = strings.TrimSpace(sku.ID)
	if err := sku.Validate(); err != nil {
		return err
	}
	if _, ok := l.catalog.Get(sku.ID); !ok {
		return fmt.Errorf("%w: %s", ErrSKUNotFound, sku.ID)
	}
	if err := l.journal.PutSKU(ctx, sku); err != nil {
		return fmt.Errorf("journal sku %s: %w", sku.ID, err)
	}
	return l.catalog.Update(sku)
}

// RemoveSKU drops a catalog entry. Recorded runs keep their snapshot.
func (l *Ledger) RemoveSKU(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.catalog.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrSKUNotFound, id)
	}
	if err := l.journal.RemoveSKU(ctx, id); err != nil {
		return fmt.Errorf("journal remove sku %s: %w", id, err)
	}
	return l.catalog.Remove(id)
}

// SKU looks up a catalog entry.
func (l *Ledger) SKU(id string) (SKU, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sku, ok := l.catalog.Get(id)
	if !ok {
		return SKU{}, fmt.Errorf("%w: %s", ErrSKUNotFound, id)
	}
	return sku, nil
}

// SKUs lists the catalog ordered by id.
func (l *Ledger) SKUs() []SKU {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.catalog.List()
}
