package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/deal"
	"github.com/Simplici0/fishcost/internal/ledger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("", "invalid json body: %v", err)
	}
	return nil
}

// writeError maps domain errors to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, err error) {
	var (
		costErr  *costing.ValidationError
		ledErr   *ledger.ValidationError
		dealErr  *deal.ValidationError
		stockErr *ledger.InsufficientStockError
		reqErr   *requestError
	)

	switch {
	case errors.As(err, &reqErr):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: reqErr.Error(), Field: reqErr.field})
	case errors.As(err, &costErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: costErr.Error(), Field: costErr.Field})
	case errors.As(err, &ledErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ledErr.Error(), Field: ledErr.Field})
	case errors.As(err, &dealErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: dealErr.Error(), Field: dealErr.Field})
	case errors.Is(err, costing.ErrGlazingOutOfRange), errors.Is(err, deal.ErrUnknownTerm):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.As(err, &stockErr):
		s.writeJSON(w, http.StatusConflict, errorBody{Error: stockErr.Error(), Field: "input_kg"})
	case errors.Is(err, ledger.ErrDuplicateLot), errors.Is(err, ledger.ErrDuplicateSKU):
		s.writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ledger.ErrLotNotFound), errors.Is(err, ledger.ErrSKUNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// requestError is a malformed request: bad JSON or an unparseable query value.
type requestError struct {
	field string
	msg   string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(field, format string, args ...any) error {
	return &requestError{field: field, msg: fmt.Sprintf(format, args...)}
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, badRequest(field, "%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, badRequest(field, "%s must be greater than 0", field)
	}
	return value, nil
}

// parseFloat accepts finite numbers only; NaN and Inf are rejected as input errors.
func parseFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, badRequest(field, "%s must be numeric", field)
	}
	return value, nil
}
