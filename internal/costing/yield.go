package costing

import (
	"fmt"
	"strings"
)

// YieldDefinition selects what the reported yield percentage measures.
//
// The measured output of a test is always clean (unglazed) weight. CleanOverRaw reports
// clean/raw. GlazedOverRaw reports the glazed-equivalent weight that clean output becomes
// once iced, over raw. The two differ by the glazing factor, and low-yield alerts must be
// read against the same definition they were configured for.
type YieldDefinition string

const (
	CleanOverRaw  YieldDefinition = "clean_over_raw"
	GlazedOverRaw YieldDefinition = "glazed_over_raw"
)

const (
	DefaultTargetYield       = 0.712
	DefaultLowYieldThreshold = 0.70
)

// ParseYieldDefinition accepts the config/API spelling of a definition. Empty means CleanOverRaw.
func ParseYieldDefinition(raw string) (YieldDefinition, error) {
	switch YieldDefinition(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CleanOverRaw:
		return CleanOverRaw, nil
	case GlazedOverRaw:
		return GlazedOverRaw, nil
	default:
		return "", fmt.Errorf("unknown yield definition %q", raw)
	}
}

// ReportedYield returns the yield fraction under def for a test that turned inputKg of raw
// fish into cleanOutputKg of clean meat.
func ReportedYield(def YieldDefinition, inputKg, cleanOutputKg, glazingPct float64) (float64, error) {
	clean := Yield(inputKg, cleanOutputKg)
	if def != GlazedOverRaw {
		return clean, nil
	}
	factor, err := GlazingFactor(glazingPct)
	if err != nil {
		return 0, err
	}
	return clean * factor, nil
}

// YieldAlert compares a measured yield to the plant's target and alert floor.
type YieldAlert struct {
	Yield       float64 `json:"yield"`
	Target      float64 `json:"target"`
	Threshold   float64 `json:"threshold"`
	BelowFloor  bool    `json:"below_floor"`
	GapToTarget float64 `json:"gap_to_target"`
}

// CheckYield builds a YieldAlert. Non-positive target or threshold fall back to defaults.
func CheckYield(yieldFraction, target, threshold float64) YieldAlert {
	if target <= 0 {
		target = DefaultTargetYield
	}
	if threshold <= 0 {
		threshold = DefaultLowYieldThreshold
	}
	return YieldAlert{
		Yield:       yieldFraction,
		Target:      target,
		Threshold:   threshold,
		BelowFloor:  yieldFraction < threshold,
		GapToTarget: target - yieldFraction,
	}
}
