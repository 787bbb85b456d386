package costing

import (
	"encoding/json"
	"math"
)

// DefaultBoxWeightKg is the carton size the plant quotes break-even in.
const DefaultBoxWeightKg = 3.0

// BreakEven is the volume at which margin covers fixed cost. Reachable is false when
// the margin per kg is zero or negative: no volume recovers the fixed cost, and Kg and
// Units are then +Inf rather than zero.
type BreakEven struct {
	FixedCost   float64
	MarginPerKg float64
	Kg          float64
	Units       float64
	UnitWeight  float64
	Reachable   bool
}

// BreakEvenKg returns the kilograms needed to cover fixedCost. ok is false when the
// margin cannot cover it at any volume.
func BreakEvenKg(fixedCost, marginPerKg float64) (kg float64, ok bool) {
	if marginPerKg <= 0 {
		return math.Inf(1), false
	}
	return fixedCost / marginPerKg, true
}

// BreakEvenUnits converts break-even kilograms into packed units.
func BreakEvenUnits(breakEvenKg, unitWeightKg float64) float64 {
	if unitWeightKg <= 0 {
		return 0
	}
	return breakEvenKg / unitWeightKg
}

// NewBreakEven computes both break-even figures for one unit weight.
func NewBreakEven(fixedCost, marginPerKg, unitWeightKg float64) BreakEven {
	be := BreakEven{
		FixedCost:   fixedCost,
		MarginPerKg: marginPerKg,
		UnitWeight:  unitWeightKg,
	}
	kg, ok := BreakEvenKg(fixedCost, marginPerKg)
	be.Reachable = ok
	be.Kg = kg
	if !ok {
		be.Units = math.Inf(1)
		return be
	}
	be.Units = BreakEvenUnits(kg, unitWeightKg)
	return be
}

// MarshalJSON encodes unreachable volumes as null.
func (b BreakEven) MarshalJSON() ([]byte, error) {
	type wire struct {
		FixedCost   float64  `json:"fixed_cost"`
		MarginPerKg float64  `json:"margin_per_kg"`
		Kg          *float64 `json:"kg"`
		Units       *float64 `json:"units"`
		UnitWeight  float64  `json:"unit_weight_kg"`
		Reachable   bool     `json:"reachable"`
	}
	w := wire{
		FixedCost:   b.FixedCost,
		MarginPerKg: b.MarginPerKg,
		UnitWeight:  b.UnitWeight,
		Reachable:   b.Reachable,
	}
	if b.Reachable {
		w.Kg, w.Units = &b.Kg, &b.Units
	}
	return json.Marshal(w)
}

// CurvePoint is one sample of the revenue and total cost lines.
type CurvePoint struct {
	Kg      float64 `json:"kg"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// BreakEvenCurve samples revenue and total cost from 0 to maxKg inclusive.
// When maxKg <= 0 the range is max(800, 2*breakEvenKg) so the crossing stays visible.
func BreakEvenCurve(fixedCost, variableCostPerKg, sellingPrice, maxKg float64, points int) []CurvePoint {
	if points < 2 {
		points = 2
	}
	if maxKg <= 0 {
		maxKg = 800
		if kg, ok := BreakEvenKg(fixedCost, sellingPrice-variableCostPerKg); ok && 2*kg > maxKg {
			maxKg = 2 * kg
		}
	}

	curve := make([]CurvePoint, points)
	step := maxKg / float64(points-1)
	for i := range curve {
		x := step * float64(i)
		revenue := sellingPrice * x
		cost := fixedCost + variableCostPerKg*x
		curve[i] = CurvePoint{Kg: x, Revenue: revenue, Cost: cost, Profit: revenue - cost}
	}
	return curve
}
