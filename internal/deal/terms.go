package deal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTerm is returned for a payment term code missing from the table.
var ErrUnknownTerm = errors.New("unknown payment term")

// PaymentTerm is one tier of the payment-delay table.
type PaymentTerm struct {
	Code        string  `json:"code"`
	Label       string  `json:"label"`
	Days        int     `json:"days"`
	FinanceRate float64 `json:"finance_rate"`
}

// DefaultTerms is the plant's standard table.
func DefaultTerms() []PaymentTerm {
	return []PaymentTerm{
		{Code: "cash", Label: "Cash", Days: 0, FinanceRate: 0},
		{Code: "net30", Label: "30 days", Days: 30, FinanceRate: 0.01},
		{Code: "net60", Label: "60 days", Days: 60, FinanceRate: 0.02},
		{Code: "net90", Label: "90 days", Days: 90, FinanceRate: 0.03},
	}
}

// Terms is a lookup table of payment terms keyed by code.
type Terms struct {
	byCode map[string]PaymentTerm
}

// NewTerms builds a table; later duplicates replace earlier ones.
func NewTerms(terms []PaymentTerm) (*Terms, error) {
	t := &Terms{byCode: make(map[string]PaymentTerm, len(terms))}
	for _, term := range terms {
		code := normalizeCode(term.Code)
		if code == "" {
			return nil, fmt.Errorf("payment term code is required")
		}
		if term.FinanceRate < 0 || term.FinanceRate >= 1 {
			return nil, fmt.Errorf("payment term %s: finance rate must be in [0, 1)", code)
		}
		term.Code = code
		t.byCode[code] = term
	}
	return t, nil
}

// Lookup returns the term for code.
func (t *Terms) Lookup(code string) (PaymentTerm, error) {
	term, ok := t.byCode[normalizeCode(code)]
	if !ok {
		return PaymentTerm{}, fmt.Errorf("%w: %q", ErrUnknownTerm, code)
	}
	return term, nil
}

// Rate returns the finance rate for code.
func (t *Terms) Rate(code string) (float64, error) {
	term, err := t.Lookup(code)
	if err != nil {
		return 0, err
	}
	return term.FinanceRate, nil
}

// List returns terms ordered by payment delay.
func (t *Terms) List() []PaymentTerm {
	out := make([]PaymentTerm, 0, len(t.byCode))
	for _, term := range t.byCode {
		out = append(out, term)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days < out[j].Days
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// SimulateWithTerm resolves the finance rate from code and runs Simulate.
func (t *Terms) SimulateWithTerm(in Input, code string) (Result, error) {
	rate, err := t.Rate(code)
	if err != nil {
		return Result{}, err
	}
	in.FinanceRate = rate
	return Simulate(in)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
