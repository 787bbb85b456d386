// Package costing holds the yield, unit-cost, break-even and capacity formulas used to
// price processed fish. Every function is pure; guards return a zero value instead of
// panicking so callers can render partial input without special-casing it.
package costing

import (
	"errors"
	"fmt"
)

// ErrGlazingOutOfRange is returned when a glazing percentage lies outside [0, 100).
var ErrGlazingOutOfRange = errors.New("glazing percent must be in [0, 100)")

// Yield returns the fraction of raw input recovered as output.
func Yield(inputKg, outputKg float64) float64 {
	if inputKg <= 0 {
		return 0
	}
	return outputKg / inputKg
}

// CleanUnitCost spreads the raw purchase price over the clean meat recovered from it.
func CleanUnitCost(rawPricePerKg, yieldFraction float64) float64 {
	if yieldFraction <= 0 {
		return 0
	}
	return rawPricePerKg / yieldFraction
}

// GlazingFactor is the weight multiplier that ice glazing adds to clean product.
func GlazingFactor(glazingPct float64) (float64, error) {
	if glazingPct < 0 || glazingPct >= 100 {
		return 0, fmt.Errorf("%w: got %.2f", ErrGlazingOutOfRange, glazingPct)
	}
	return 1 / (1 - glazingPct/100), nil
}

// ApplyGlazing dilutes a clean per-kg cost across the heavier glazed weight.
func ApplyGlazing(cleanUnitCost, glazingPct float64) (float64, error) {
	factor, err := GlazingFactor(glazingPct)
	if err != nil {
		return 0, err
	}
	return cleanUnitCost / factor, nil
}

// CleanFromFinal reverses ApplyGlazing.
func CleanFromFinal(finalUnitCost, glazingPct float64) (float64, error) {
	factor, err := GlazingFactor(glazingPct)
	if err != nil {
		return 0, err
	}
	return finalUnitCost * factor, nil
}

// TotalVariableCost is the per-kg cost of raw material, packaging and utilities.
func TotalVariableCost(finalUnitCost, packagingCostPerKg, utilityCostPerKg float64) float64 {
	return finalUnitCost + packagingCostPerKg + utilityCostPerKg
}

// MarginPerKg is negative when the selling price does not cover variable cost.
func MarginPerKg(sellingPrice, totalVariableCost float64) float64 {
	return sellingPrice - totalVariableCost
}

// UnitCostChain runs raw price -> clean cost -> glazed cost -> total variable cost.
func UnitCostChain(rawPricePerKg, yieldFraction, glazingPct, packagingCostPerKg, utilityCostPerKg float64) (float64, error) {
	final, err := ApplyGlazing(CleanUnitCost(rawPricePerKg, yieldFraction), glazingPct)
	if err != nil {
		return 0, err
	}
	return TotalVariableCost(final, packagingCostPerKg, utilityCostPerKg), nil
}
