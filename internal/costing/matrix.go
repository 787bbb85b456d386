package costing

// MatrixParams holds the cost inputs that stay fixed across the price grid.
type MatrixParams struct {
	Yield          float64 `json:"yield"`
	GlazingPct     float64 `json:"glazing_pct"`
	PackagingPerKg float64 `json:"packaging_per_kg"`
	UtilityPerKg   float64 `json:"utility_per_kg"`
}

// Matrix is a buy x sell grid of margins per kg. Margins[i][j] pairs Buy[i] with Sell[j].
type Matrix struct {
	Buy     []float64   `json:"buy"`
	Sell    []float64   `json:"sell"`
	Margins [][]float64 `json:"margins"`
}

// MarginBand buckets a margin for colour coding.
type MarginBand string

const (
	BandLoss    MarginBand = "loss"
	BandThin    MarginBand = "thin"
	BandHealthy MarginBand = "healthy"
)

// HealthyMarginPerKg is the margin above which a price pair is considered comfortable.
const HealthyMarginPerKg = 1.0

// Band classifies a margin per kg.
func Band(margin float64) MarginBand {
	switch {
	case margin < 0:
		return BandLoss
	case margin < HealthyMarginPerKg:
		return BandThin
	default:
		return BandHealthy
	}
}

// PriceRange returns steps evenly spaced prices from center-spread to center+spread.
func PriceRange(center, spread float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{center}
	}
	lo := center - spread
	step := 2 * spread / float64(steps-1)
	prices := make([]float64, steps)
	for i := range prices {
		prices[i] = lo + step*float64(i)
	}
	return prices
}

// BuildMatrix recomputes the unit cost chain for every buy price and subtracts it from
// every sell price. Rows follow buy order, columns follow sell order.
func BuildMatrix(buy, sell []float64, p MatrixParams) (Matrix, error) {
	m := Matrix{
		Buy:     append([]float64(nil), buy...),
		Sell:    append([]float64(nil), sell...),
		Margins: make([][]float64, len(buy)),
	}
	for i, b := range buy {
		cost, err := UnitCostChain(b, p.Yield, p.GlazingPct, p.PackagingPerKg, p.UtilityPerKg)
		if err != nil {
			return Matrix{}, err
		}
		row := make([]float64, len(sell))
		for j, s := range sell {
			row[j] = MarginPerKg(s, cost)
		}
		m.Margins[i] = row
	}
	return m, nil
}

// Bands maps every margin of m to its MarginBand.
func (m Matrix) Bands() [][]MarginBand {
	bands := make([][]MarginBand, len(m.Margins))
	for i, row := range m.Margins {
		bands[i] = make([]MarginBand, len(row))
		for j, v := range row {
			bands[i][j] = Band(v)
		}
	}
	return bands
}

// ScenarioMatrix centres a steps x steps grid on the scenario's raw and selling prices.
func ScenarioMatrix(s Scenario, spread float64, steps int) (Matrix, error) {
	res, err := Evaluate(s)
	if err != nil {
		return Matrix{}, err
	}
	return BuildMatrix(
		PriceRange(s.RawPrice, spread, steps),
		PriceRange(s.SellingPrice, spread, steps),
		MatrixParams{
			Yield:          res.Yield,
			GlazingPct:     s.GlazingPct,
			PackagingPerKg: s.PackagingPerKg,
			UtilityPerKg:   s.UtilityPerKg,
		},
	)
}
