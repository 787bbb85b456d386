package costing

const (
	DefaultTestMinutes = 35.0
	DefaultShiftHours  = 8.0
)

// BenchmarkRate is the raw throughput of the crew in kg per minute.
func BenchmarkRate(inputKgInTest, testMinutes float64) float64 {
	if testMinutes <= 0 {
		return 0
	}
	return inputKgInTest / testMinutes
}

// Capacity projects a timed test to a full shift and returns sellable glazed kilograms.
func Capacity(inputKgInTest, testMinutes, shiftHours, yieldFraction, glazingPct float64) float64 {
	factor, err := GlazingFactor(glazingPct)
	if err != nil {
		return 0
	}
	rawPerShift := BenchmarkRate(inputKgInTest, testMinutes) * 60 * shiftHours
	return rawPerShift * yieldFraction * factor
}

// FinalOutputKg is the glazed product weight obtained from rawKg of fish.
func FinalOutputKg(rawKg, yieldFraction, glazingPct float64) float64 {
	factor, err := GlazingFactor(glazingPct)
	if err != nil {
		return 0
	}
	return rawKg * yieldFraction * factor
}

// RequiredRawKg is the raw purchase needed for targetUnits packed units.
func RequiredRawKg(targetUnits, unitWeightKg, glazingPct, yieldFraction float64) float64 {
	if yieldFraction <= 0 || glazingPct < 0 || glazingPct >= 100 {
		return 0
	}
	cleanKg := targetUnits * unitWeightKg * (1 - glazingPct/100)
	return cleanKg / yieldFraction
}

// RequiredHours is the crew time needed to process requiredRawKg at the benchmark rate.
func RequiredHours(requiredRawKg, benchmarkRateKgPerMin float64) float64 {
	if benchmarkRateKgPerMin <= 0 {
		return 0
	}
	return requiredRawKg / benchmarkRateKgPerMin / 60
}
