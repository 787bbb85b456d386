package ledger

import "sort"

// SupplierSummary aggregates the lots bought from one supplier.
type SupplierSummary struct {
	Supplier      string  `json:"supplier"`
	Lots          int     `json:"lots"`
	PurchasedKg   float64 `json:"purchased_kg"`
	RemainingKg   float64 `json:"remaining_kg"`
	Spend         float64 `json:"spend"`
	AvgPricePerKg float64 `json:"avg_price_per_kg"`
}

// Suppliers groups lots by supplier name, sorted by spend then name.
func (l *Ledger) Suppliers() []SupplierSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	bySupplier := make(map[string]*SupplierSummary)
	for _, lot := range l.lots {
		name := lot.Supplier
		if name == "" {
			name = "unknown"
		}
		sum, ok := bySupplier[name]
		if !ok {
			sum = &SupplierSummary{Supplier: name}
			bySupplier[name] = sum
		}
		sum.Lots++
		sum.PurchasedKg += lot.InitialKg
		sum.RemainingKg += lot.RemainingKg
		sum.Spend += lot.InitialKg * lot.PricePerKg
	}

	out := make([]SupplierSummary, 0, len(bySupplier))
	for _, sum := range bySupplier {
		if sum.PurchasedKg > 0 {
			sum.AvgPricePerKg = sum.Spend / sum.PurchasedKg
		}
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Supplier < out[j].Supplier
	})
	return out
}

// Summary is a dashboard roll-up of stock and production.
type Summary struct {
	ActiveLots    int     `json:"active_lots"`
	StockKg       float64 `json:"stock_kg"`
	StockValue    float64 `json:"stock_value"`
	Runs          int     `json:"runs"`
	InputKg       float64 `json:"input_kg"`
	OutputKg      float64 `json:"output_kg"`
	OutputUnits   int     `json:"output_units"`
	TotalCost     float64 `json:"total_cost"`
	AvgCostPerKg  float64 `json:"avg_cost_per_kg"`
	WeightedYield float64 `json:"weighted_yield_pct"`
}

// Summary totals stock on hand and every recorded run. WeightedYield is the
// input-weighted mean of the runs' yield percentages.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Summary
	for _, lot := range l.lots {
		if lot.RemainingKg <= 0 {
			continue
		}
		s.ActiveLots++
		s.StockKg += lot.RemainingKg
		s.StockValue += lot.RemainingKg * lot.PricePerKg
	}

	var yieldWeighted float64
	for _, run := range l.runs {
		s.Runs++
		s.InputKg += run.InputKg
		s.OutputKg += run.OutputKg
		s.OutputUnits += run.OutputUnits
		s.TotalCost += run.TotalCost
		yieldWeighted += run.YieldPct * run.InputKg
	}
	if s.OutputKg > 0 {
		s.AvgCostPerKg = s.TotalCost / s.OutputKg
	}
	if s.InputKg > 0 {
		s.WeightedYield = yieldWeighted / s.InputKg
	}
	return s
}
