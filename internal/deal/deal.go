// Package deal decides whether a proposed bulk sale pays once overhead and the cost of
// waiting for payment are counted.
package deal

import (
	"fmt"
	"math"
)

// ValidationError reports an unusable deal input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Input describes one proposed sale. FinanceRate is a fraction of revenue (0.02 = 2 %).
type Input struct {
	QtyKg         float64 `json:"qty_kg"`
	PricePerKg    float64 `json:"price_per_kg"`
	BaseCostPerKg float64 `json:"base_cost_per_kg"`
	OverheadPerKg float64 `json:"overhead_per_kg"`
	FinanceRate   float64 `json:"finance_rate"`
}

// Result is the profit and loss of a simulated deal.
type Result struct {
	Revenue     float64 `json:"revenue"`
	CostOfGoods float64 `json:"cost_of_goods"`
	FinanceCost float64 `json:"finance_cost"`
	NetProfit   float64 `json:"net_profit"`
	MarginPct   float64 `json:"margin_pct"`
	Profitable  bool    `json:"profitable"`
}

// Validate rejects a negative quantity and a finance rate outside [0, 1).
func (in Input) Validate() error {
	if in.QtyKg < 0 {
		return &ValidationError{Field: "qty_kg", Reason: "must be greater than or equal to 0"}
	}
	if in.FinanceRate < 0 || in.FinanceRate >= 1 || math.IsNaN(in.FinanceRate) {
		return &ValidationError{Field: "finance_rate", Reason: "must be in [0, 1)"}
	}
	return nil
}

// Simulate computes revenue, cost of goods, finance cost and net profit. The finance
// rate applies to revenue since it prices the delay in collecting it.
func Simulate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	revenue := in.QtyKg * in.PricePerKg
	cogs := in.QtyKg * (in.BaseCostPerKg + in.OverheadPerKg)
	finance := revenue * in.FinanceRate
	net := revenue - cogs - finance

	marginPct := 0.0
	if revenue != 0 {
		marginPct = net / revenue * 100
	}

	return Result{
		Revenue:     revenue,
		CostOfGoods: cogs,
		FinanceCost: finance,
		NetProfit:   net,
		MarginPct:   marginPct,
		Profitable:  net > 0,
	}, nil
}

// BreakEvenPrice is the lowest price per kg at which the deal does not lose money.
// It returns +Inf when the finance rate swallows the whole revenue.
func BreakEvenPrice(in Input) float64 {
	keep := 1 - in.FinanceRate
	if keep <= 0 {
		return math.Inf(1)
	}
	return (in.BaseCostPerKg + in.OverheadPerKg) / keep
}
