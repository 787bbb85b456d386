package ledger

import (
	"time"

	"github.com/Simplici0/fishcost/internal/costing"
)

// LaborParams prices the crew time of one run. A disabled block costs nothing.
type LaborParams struct {
	Enabled    bool    `json:"enabled"`
	Workers    int     `json:"workers"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
}

// Cost is workers x hours x rate.
func (p LaborParams) Cost() float64 {
	if !p.Enabled {
		return 0
	}
	return float64(p.Workers) * p.Hours * p.HourlyRate
}

func (p LaborParams) validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Workers < 0 {
		return invalid("labor.workers", "must be greater than or equal to 0")
	}
	if p.Hours < 0 {
		return invalid("labor.hours", "must be greater than or equal to 0")
	}
	if p.HourlyRate < 0 {
		return invalid("labor.hourly_rate", "must be greater than or equal to 0")
	}
	return nil
}

// RunRequest is a production entry as submitted. Either SKUID names a catalog entry or
// AdHocSKU carries one-off values.
type RunRequest struct {
	LotID             string                  `json:"lot_id"`
	SKUID             string                  `json:"sku_id"`
	AdHocSKU          *SKU                    `json:"adhoc_sku,omitempty"`
	InputKg           float64                 `json:"input_kg"`
	OutputUnits       int                     `json:"output_units"`
	TargetGlazingPct  float64                 `json:"target_glazing_pct"`
	ActualGlazingPct  float64                 `json:"actual_glazing_pct"`
	Labor             LaborParams             `json:"labor"`
	PackagingOverride *float64                `json:"packaging_override,omitempty"`
	YieldDefinition   costing.YieldDefinition `json:"yield_definition,omitempty"`
}

func (r RunRequest) validate() error {
	if r.LotID == "" {
		return invalid("lot_id", "is required")
	}
	if r.InputKg <= 0 {
		return invalid("input_kg", "must be greater than 0")
	}
	if r.OutputUnits <= 0 {
		return invalid("output_units", "must be greater than 0")
	}
	if r.TargetGlazingPct < 0 || r.TargetGlazingPct >= 100 {
		return invalid("target_glazing_pct", "must be in [0, 100)")
	}
	if r.ActualGlazingPct < 0 || r.ActualGlazingPct >= 100 {
		return invalid("actual_glazing_pct", "must be in [0, 100)")
	}
	if r.PackagingOverride != nil && *r.PackagingOverride < 0 {
		return invalid("packaging_override", "must be greater than or equal to 0")
	}
	if r.YieldDefinition != "" {
		if _, err := costing.ParseYieldDefinition(string(r.YieldDefinition)); err != nil {
			return invalid("yield_definition", err.Error())
		}
	}
	return r.Labor.validate()
}

// Run is an immutable production ledger entry. SKU is a snapshot of the recipe at the
// time of recording.
type Run struct {
	ID               string                  `json:"id"`
	RecordedAt       time.Time               `json:"recorded_at"`
	LotID            string                  `json:"lot_id"`
	SKU              SKU                     `json:"sku"`
	AdHoc            bool                    `json:"adhoc"`
	InputKg          float64                 `json:"input_kg"`
	OutputUnits      int                     `json:"output_units"`
	OutputKg         float64                 `json:"output_kg"`
	TargetGlazingPct float64                 `json:"target_glazing_pct"`
	ActualGlazingPct float64                 `json:"actual_glazing_pct"`
	YieldDefinition  costing.YieldDefinition `json:"yield_definition"`
	YieldPct         float64                 `json:"yield_pct"`
	RawCost          float64                 `json:"raw_cost"`
	LaborCost        float64                 `json:"labor_cost"`
	PackagingCost    float64                 `json:"packaging_cost"`
	TotalCost        float64                 `json:"total_cost"`
	CostPerKg        float64                 `json:"cost_per_kg"`
}

// price fills the computed fields of run from its inputs and the source lot price.
func (run *Run) price(lotPricePerKg float64, labor LaborParams, packagingOverride *float64) {
	run.OutputKg = float64(run.OutputUnits) * run.SKU.UnitWeightKg

	cleanKg := run.OutputKg * (1 - run.ActualGlazingPct/100)
	measured := cleanKg
	if run.YieldDefinition == costing.GlazedOverRaw {
		measured = run.OutputKg
	}
	run.YieldPct = costing.Yield(run.InputKg, measured) * 100

	run.RawCost = run.InputKg * lotPricePerKg
	run.LaborCost = labor.Cost()
	if packagingOverride != nil {
		run.PackagingCost = *packagingOverride
	} else {
		run.PackagingCost = float64(run.OutputUnits) * run.SKU.PackagingCost
	}
	run.TotalCost = run.RawCost + run.LaborCost + run.PackagingCost
	if run.OutputKg > 0 {
		run.CostPerKg = run.TotalCost / run.OutputKg
	}
}
