// Package session owns the per-session ledgers. Each browser session gets its own
// ledger; nothing is shared between sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/ledger"
)

// ErrEmptyID is returned for a blank session id.
var ErrEmptyID = errors.New("session id is required")

// Backend persists session ledgers. *store.Store satisfies it.
type Backend interface {
	EnsureSession(ctx context.Context, sessionID string) (bool, error)
	LoadState(ctx context.Context, sessionID string) (ledger.State, error)
	SKUTemplates(ctx context.Context) ([]ledger.SKU, error)
	Journal(sessionID string) ledger.Journal
}

type entry struct {
	ledger   *ledger.Ledger
	lastSeen time.Time
}

// Manager hands out ledgers by session id and evicts idle ones from memory.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	loads    singleflight.Group

	backend  Backend
	idleTTL  time.Duration
	yieldDef costing.YieldDefinition
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager builds a Manager. A nil backend keeps ledgers in memory only.
func NewManager(backend Backend, idleTTL time.Duration, yieldDef costing.YieldDefinition, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		backend:  backend,
		idleTTL:  idleTTL,
		yieldDef: yieldDef,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the ledger of sessionID, loading it from the backend or creating it from
// the catalog templates on first use.
func (m *Manager) Get(ctx context.Context, sessionID string) (*ledger.Ledger, error) {
	if sessionID == "" {
		return nil, ErrEmptyID
	}

	if l, ok := m.cached(sessionID); ok {
		return l, nil
	}

	// Loading happens outside mu; concurrent first requests for one id share a single load.
	v, err, _ := m.loads.Do(sessionID, func() (any, error) {
		if l, ok := m.cached(sessionID); ok {
			return l, nil
		}
		l, err := m.open(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[sessionID] = &entry{ledger: l, lastSeen: m.now()}
		m.mu.Unlock()
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ledger.Ledger), nil
}

func (m *Manager) cached(sessionID string) (*ledger.Ledger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.ledger, true
}

func (m *Manager) open(ctx context.Context, sessionID string) (*ledger.Ledger, error) {
	opts := []ledger.Option{
		ledger.WithYieldDefinition(m.yieldDef),
		ledger.WithLogger(m.logger.With(zap.String("session_id", sessionID))),
	}
	if m.backend == nil {
		return ledger.New(opts...), nil
	}

	opts = append(opts, ledger.WithJournal(m.backend.Journal(sessionID)))

	created, err := m.backend.EnsureSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}
	if !created {
		state, err := m.backend.LoadState(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load session state: %w", err)
		}
		l, err := ledger.Restore(state, opts...)
		if err != nil {
			return nil, fmt.Errorf("restore session ledger: %w", err)
		}
		m.logger.Debug("session restored", zap.String("session_id", sessionID), zap.Int("lots", len(state.Lots)))
		return l, nil
	}

	templates, err := m.backend.SKUTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sku templates: %w", err)
	}
	l := ledger.New(opts...)
	for _, sku := range templates {
		if err := l.AddSKU(ctx, sku); err != nil {
			return nil, fmt.Errorf("seed sku %s: %w", sku.ID, err)
		}
	}
	m.logger.Info("session created", zap.String("session_id", sessionID), zap.Int("skus", len(templates)))
	return l, nil
}

// Sweep drops sessions idle since before now-idleTTL from memory and returns how many
// were evicted. Persisted state stays in the backend.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-m.idleTTL)
	evicted := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("idle sessions evicted", zap.Int("evicted", evicted), zap.Int("remaining", len(m.sessions)))
	}
	return evicted
}

// Len reports the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
