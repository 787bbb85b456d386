package main

import (
	"net/http"

	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/deal"
)

const (
	defaultMatrixSpread = 0.5
	defaultMatrixSteps  = 5
	maxMatrixSteps      = 41
	defaultCurvePoints  = 100
)

func (s *server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var sc costing.Scenario
	if err := decodeJSON(r, &sc); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := costing.Evaluate(s.plant.Apply(sc))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type matrixRequest struct {
	Scenario costing.Scenario `json:"scenario"`
	Spread   float64          `json:"spread"`
	Steps    int              `json:"steps"`
	Buy      []float64        `json:"buy"`
	Sell     []float64        `json:"sell"`
}

type matrixResponse struct {
	costing.Matrix
	Bands [][]costing.MarginBand `json:"bands"`
}

func (s *server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	var req matrixRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Spread <= 0 {
		req.Spread = defaultMatrixSpread
	}
	if req.Steps <= 0 {
		req.Steps = defaultMatrixSteps
	}
	if req.Steps > maxMatrixSteps || len(req.Buy) > maxMatrixSteps || len(req.Sell) > maxMatrixSteps {
		s.writeError(w, badRequest("steps", "at most %d prices per axis", maxMatrixSteps))
		return
	}

	sc := s.plant.Apply(req.Scenario)
	var (
		m   costing.Matrix
		err error
	)
	if len(req.Buy) > 0 && len(req.Sell) > 0 {
		var res costing.Result
		if res, err = costing.Evaluate(sc); err != nil {
			s.writeError(w, err)
			return
		}
		m, err = costing.BuildMatrix(req.Buy, req.Sell, costing.MatrixParams{
			Yield:          res.Yield,
			GlazingPct:     sc.GlazingPct,
			PackagingPerKg: sc.PackagingPerKg,
			UtilityPerKg:   sc.UtilityPerKg,
		})
	} else {
		m, err = costing.ScenarioMatrix(sc, req.Spread, req.Steps)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matrixResponse{Matrix: m, Bands: m.Bands()})
}

type reverseRequest struct {
	Scenario    costing.Scenario `json:"scenario"`
	TargetUnits float64          `json:"target_units"`
}

func (s *server) handleReverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	plan, err := costing.Reverse(s.plant.Apply(req.Scenario), req.TargetUnits)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

type curveRequest struct {
	Scenario costing.Scenario `json:"scenario"`
	MaxKg    float64          `json:"max_kg"`
	Points   int              `json:"points"`
}

type curveResponse struct {
	BreakEven costing.BreakEven    `json:"break_even"`
	Points    []costing.CurvePoint `json:"points"`
}

func (s *server) handleCurve(w http.ResponseWriter, r *http.Request) {
	var req curveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Points <= 0 {
		req.Points = defaultCurvePoints
	}
	if req.Points > 1000 {
		s.writeError(w, badRequest("points", "points must be at most 1000"))
		return
	}

	sc := s.plant.Apply(req.Scenario)
	res, err := costing.Evaluate(sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, curveResponse{
		BreakEven: res.BreakEven,
		Points:    costing.BreakEvenCurve(res.FixedCost, res.TotalVariableCost, sc.SellingPrice, req.MaxKg, req.Points),
	})
}

// handleBreakEven answers GET /api/calc/break-even?fixed_cost=&margin_per_kg=&unit_weight_kg=.
func (s *server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fixed, err := parseNonNegativeFloat(q.Get("fixed_cost"), "fixed_cost")
	if err != nil {
		s.writeError(w, err)
		return
	}
	margin, err := parseFloat(q.Get("margin_per_kg"), "margin_per_kg")
	if err != nil {
		s.writeError(w, err)
		return
	}
	unitWeight := s.plant.BoxWeightKg
	if raw := q.Get("unit_weight_kg"); raw != "" {
		if unitWeight, err = parsePositiveFloat(raw, "unit_weight_kg"); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, costing.NewBreakEven(fixed, margin, unitWeight))
}

func (s *server) handlePaymentTerms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.terms.List())
}

type dealRequest struct {
	deal.Input
	PaymentTerm string `json:"payment_term"`
}

type dealResponse struct {
	deal.Result
	FinanceRate    float64 `json:"finance_rate"`
	BreakEvenPrice float64 `json:"break_even_price"`
}

func (s *server) handleDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	in := req.Input
	if req.PaymentTerm != "" {
		rate, err := s.terms.Rate(req.PaymentTerm)
		if err != nil {
			s.writeError(w, err)
			return
		}
		in.FinanceRate = rate
	}
	res, err := deal.Simulate(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dealResponse{
		Result:         res,
		FinanceRate:    in.FinanceRate,
		BreakEvenPrice: deal.BreakEvenPrice(in),
	})
}
