package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/fishcost/internal/ledger"
)

// ledgerFor resolves the ledger of the caller's session.
func (s *server) ledgerFor(r *http.Request) (*ledger.Ledger, error) {
	return s.sessions.Get(r.Context(), sessionIDFrom(r.Context()))
}

func (s *server) handleLotsList(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		if activeOnly, err = strconv.ParseBool(raw); err != nil {
			s.writeError(w, badRequest("active", "active must be a boolean"))
			return
		}
	}
	if activeOnly {
		s.writeJSON(w, http.StatusOK, l.ActiveLots())
		return
	}
	s.writeJSON(w, http.StatusOK, l.Lots())
}

func (s *server) handleLotsCreate(w http.ResponseWriter, r *http.Request) {
	var in ledger.LotInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	lot, err := l.ReceiveLot(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, lot)
}

func (s *server) handleLotGet(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	lot, err := l.Lot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lot)
}

func (s *server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l.Suppliers())
}

func (s *server) handleSKUsList(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l.SKUs())
}

func (s *server) handleSKUsCreate(w http.ResponseWriter, r *http.Request) {
	var sku ledger.SKU
	if err := decodeJSON(r, &sku); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := l.AddSKU(r.Context(), sku); err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := l.SKU(strings.TrimSpace(sku.ID))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

func (s *server) handleSKUsUpdate(w http.ResponseWriter, r *http.Request) {
	var sku ledger.SKU
	if err := decodeJSON(r, &sku); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if sku.ID != "" && sku.ID != id {
		s.writeError(w, badRequest("id", "body id %q does not match path id %q", sku.ID, id))
		return
	}
	sku.ID = id

	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := l.UpdateSKU(r.Context(), sku); err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := l.SKU(strings.TrimSpace(sku.ID))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *server) handleSKUsDelete(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := l.RemoveSKU(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRunsList(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l.Runs())
}

func (s *server) handleRunsCreate(w http.ResponseWriter, r *http.Request) {
	var req ledger.RunRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	run, err := l.RecordRun(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, run)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledgerFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l.Summary())
}
