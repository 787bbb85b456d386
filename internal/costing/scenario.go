package costing

import "fmt"

// ValidationError reports an input field that cannot be used in a calculation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Scenario is the parameter set for one costing pass.
type Scenario struct {
	SellingPrice      float64         `json:"selling_price" yaml:"selling_price"`
	RawPrice          float64         `json:"raw_price" yaml:"raw_price"`
	TestInputKg       float64         `json:"test_input_kg" yaml:"test_input_kg"`
	TestOutputKg      float64         `json:"test_output_kg" yaml:"test_output_kg"`
	GlazingPct        float64         `json:"glazing_pct" yaml:"glazing_pct"`
	Workers           int             `json:"workers" yaml:"workers"`
	DailyWage         float64         `json:"daily_wage" yaml:"daily_wage"`
	PackagingPerKg    float64         `json:"packaging_per_kg" yaml:"packaging_per_kg"`
	UtilityPerKg      float64         `json:"utility_per_kg" yaml:"utility_per_kg"`
	BoxWeightKg       float64         `json:"box_weight_kg" yaml:"box_weight_kg"`
	TestMinutes       float64         `json:"test_minutes" yaml:"test_minutes"`
	ShiftHours        float64         `json:"shift_hours" yaml:"shift_hours"`
	YieldDefinition   YieldDefinition `json:"yield_definition" yaml:"yield_definition"`
	TargetYield       float64         `json:"target_yield" yaml:"target_yield"`
	LowYieldThreshold float64         `json:"low_yield_threshold" yaml:"low_yield_threshold"`
}

// WithDefaults fills zero-valued plant constants.
func (s Scenario) WithDefaults() Scenario {
	if s.BoxWeightKg <= 0 {
		s.BoxWeightKg = DefaultBoxWeightKg
	}
	if s.TestMinutes <= 0 {
		s.TestMinutes = DefaultTestMinutes
	}
	if s.ShiftHours <= 0 {
		s.ShiftHours = DefaultShiftHours
	}
	if s.YieldDefinition == "" {
		s.YieldDefinition = CleanOverRaw
	}
	return s
}

// Validate rejects inputs that would make the cost chain meaningless.
func (s Scenario) Validate() error {
	if s.TestInputKg <= 0 {
		return &ValidationError{Field: "test_input_kg", Reason: "must be greater than 0"}
	}
	if s.TestOutputKg <= 0 {
		return &ValidationError{Field: "test_output_kg", Reason: "must be greater than 0"}
	}
	if s.GlazingPct < 0 || s.GlazingPct >= 100 {
		return &ValidationError{Field: "glazing_pct", Reason: "must be in [0, 100)"}
	}
	if s.Workers < 0 {
		return &ValidationError{Field: "workers", Reason: "must be greater than or equal to 0"}
	}
	nonNegative := []struct {
		field string
		value float64
	}{
		{"selling_price", s.SellingPrice},
		{"raw_price", s.RawPrice},
		{"daily_wage", s.DailyWage},
		{"packaging_per_kg", s.PackagingPerKg},
		{"utility_per_kg", s.UtilityPerKg},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return &ValidationError{Field: f.field, Reason: "must be greater than or equal to 0"}
		}
	}
	if _, err := ParseYieldDefinition(string(s.YieldDefinition)); err != nil {
		return &ValidationError{Field: "yield_definition", Reason: err.Error()}
	}
	return nil
}

// FixedCost is the crew cost of one day.
func (s Scenario) FixedCost() float64 {
	return float64(s.Workers) * s.DailyWage
}

// Result contains every intermediate value of a scenario evaluation.
type Result struct {
	Yield             float64         `json:"yield"`
	ReportedYield     float64         `json:"reported_yield"`
	YieldDefinition   YieldDefinition `json:"yield_definition"`
	GlazingFactor     float64         `json:"glazing_factor"`
	CleanUnitCost     float64         `json:"clean_unit_cost"`
	FinalUnitCost     float64         `json:"final_unit_cost"`
	TotalVariableCost float64         `json:"total_variable_cost"`
	FixedCost         float64         `json:"fixed_cost"`
	MarginPerKg       float64         `json:"margin_per_kg"`
	MarginPerBox      float64         `json:"margin_per_box"`
	BreakEven         BreakEven       `json:"break_even"`
	CapacityKg        float64         `json:"capacity_kg"`
	DailyProfit       float64         `json:"daily_profit"`
	YieldAlert        YieldAlert      `json:"yield_alert"`
}

// Evaluate runs the full cost chain for s.
func Evaluate(s Scenario) (Result, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	yield := Yield(s.TestInputKg, s.TestOutputKg)
	reported, err := ReportedYield(s.YieldDefinition, s.TestInputKg, s.TestOutputKg, s.GlazingPct)
	if err != nil {
		return Result{}, err
	}
	factor, err := GlazingFactor(s.GlazingPct)
	if err != nil {
		return Result{}, err
	}

	clean := CleanUnitCost(s.RawPrice, yield)
	final, err := ApplyGlazing(clean, s.GlazingPct)
	if err != nil {
		return Result{}, err
	}
	variable := TotalVariableCost(final, s.PackagingPerKg, s.UtilityPerKg)
	fixed := s.FixedCost()
	margin := MarginPerKg(s.SellingPrice, variable)
	capacity := Capacity(s.TestInputKg, s.TestMinutes, s.ShiftHours, yield, s.GlazingPct)

	return Result{
		Yield:             yield,
		ReportedYield:     reported,
		YieldDefinition:   s.YieldDefinition,
		GlazingFactor:     factor,
		CleanUnitCost:     clean,
		FinalUnitCost:     final,
		TotalVariableCost: variable,
		FixedCost:         fixed,
		MarginPerKg:       margin,
		MarginPerBox:      margin * s.BoxWeightKg,
		BreakEven:         NewBreakEven(fixed, margin, s.BoxWeightKg),
		CapacityKg:        capacity,
		DailyProfit:       capacity*margin - fixed,
		YieldAlert:        CheckYield(reported, s.TargetYield, s.LowYieldThreshold),
	}, nil
}

// ReversePlan answers "what do I need to buy and how long will it take" for an order.
type ReversePlan struct {
	TargetUnits   float64 `json:"target_units"`
	TargetFinalKg float64 `json:"target_final_kg"`
	CleanKg       float64 `json:"clean_kg"`
	RequiredRawKg float64 `json:"required_raw_kg"`
	BenchmarkRate float64 `json:"benchmark_rate_kg_per_min"`
	RequiredHours float64 `json:"required_hours"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Reverse plans the raw purchase and crew time for targetUnits boxes of s.BoxWeightKg.
func Reverse(s Scenario, targetUnits float64) (ReversePlan, error) {
	if targetUnits < 0 {
		return ReversePlan{}, &ValidationError{Field: "target_units", Reason: "must be greater than or equal to 0"}
	}
	res, err := Evaluate(s)
	if err != nil {
		return ReversePlan{}, err
	}
	s = s.WithDefaults()

	finalKg := targetUnits * s.BoxWeightKg
	raw := RequiredRawKg(targetUnits, s.BoxWeightKg, s.GlazingPct, res.Yield)
	rate := BenchmarkRate(s.TestInputKg, s.TestMinutes)
	hours := RequiredHours(raw, rate)

	return ReversePlan{
		TargetUnits:   targetUnits,
		TargetFinalKg: finalKg,
		CleanKg:       finalKg * (1 - s.GlazingPct/100),
		RequiredRawKg: raw,
		BenchmarkRate: rate,
		RequiredHours: hours,
		EstimatedCost: finalKg*res.TotalVariableCost + hours/s.ShiftHours*res.FixedCost,
	}, nil
}
