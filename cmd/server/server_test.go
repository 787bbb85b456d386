package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/fishcost/internal/config"
	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/deal"
	"github.com/Simplici0/fishcost/internal/session"
)

// testClient replays the session cookie between requests like a browser would.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	terms, err := deal.NewTerms(deal.DefaultTerms())
	require.NoError(t, err)

	srv := &server{
		auth:     newSessionAuth("test-secret", false),
		sessions: session.NewManager(nil, 0, costing.CleanOverRaw, zap.NewNop()),
		terms:    terms,
		plant: config.PlantConfig{
			BoxWeightKg:       costing.DefaultBoxWeightKg,
			TestMinutes:       costing.DefaultTestMinutes,
			ShiftHours:        costing.DefaultShiftHours,
			YieldDefinition:   costing.CleanOverRaw,
			TargetYield:       costing.DefaultTargetYield,
			LowYieldThreshold: costing.DefaultLowYieldThreshold,
		},
		logger: zap.NewNop(),
	}
	return &testClient{t: t, handler: srv.routes()}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else {
			require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if fresh := rec.Result().Cookies(); len(fresh) > 0 {
		c.cookies = fresh
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var referenceScenario = map[string]any{
	"selling_price":    4.80,
	"raw_price":        2.30,
	"test_input_kg":    60,
	"test_output_kg":   42.7,
	"glazing_pct":      15,
	"workers":          5,
	"daily_wage":       64,
	"packaging_per_kg": 0.18,
	"utility_per_kg":   0.25,
}

func TestHealthz(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "health checks should not open sessions")
}

func TestScenario_ReferenceValues(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/scenario", referenceScenario)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.InDelta(t, 0.7117, res["yield"], 1e-4)
	assert.InDelta(t, 2.747, res["final_unit_cost"], 1e-3)
	assert.InDelta(t, 1.623, res["margin_per_kg"], 1e-3)

	be := res["break_even"].(map[string]any)
	assert.Equal(t, true, be["reachable"])
	assert.InDelta(t, 3.0, be["unit_weight_kg"], 1e-12)
}

func TestScenario_RejectsUnknownFields(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/scenario", `{"selling_price": 4.8, "yeild": 0.7}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_GlazingOutOfRange(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/scenario", map[string]any{"test_input_kg": 60, "test_output_kg": 42.7, "glazing_pct": 100})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "glazing_pct", body.Field)
}

func TestBreakEven_UnreachableIsNull(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodGet, "/api/calc/break-even?fixed_cost=320&margin_per_kg=-0.5", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, false, res["reachable"])
	assert.Nil(t, res["kg"])
	assert.Nil(t, res["units"])
}

func TestBreakEven_QueryValidation(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodGet, "/api/calc/break-even?fixed_cost=abc&margin_per_kg=1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fixed_cost", decode[errorBody](t, rec).Field)

	for _, query := range []string{
		"fixed_cost=Inf&margin_per_kg=1",
		"fixed_cost=NaN&margin_per_kg=1",
		"fixed_cost=320&margin_per_kg=NaN",
		"fixed_cost=320&margin_per_kg=-Inf",
		"fixed_cost=320&margin_per_kg=1&unit_weight_kg=%2BInf",
	} {
		rec = c.do(http.MethodGet, "/api/calc/break-even?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}

	rec = c.do(http.MethodGet, "/api/calc/break-even?fixed_cost=320&margin_per_kg=2&unit_weight_kg=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.InDelta(t, 160.0, res["kg"], 1e-9)
	assert.InDelta(t, 16.0, res["units"], 1e-9)
}

func TestMatrix_DefaultsToFiveByFive(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/matrix", map[string]any{"scenario": referenceScenario})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[matrixResponse](t, rec)
	require.Len(t, res.Buy, 5)
	require.Len(t, res.Sell, 5)
	require.Len(t, res.Margins, 5)
	require.Len(t, res.Bands, 5)
	assert.InDelta(t, 2.30, res.Buy[2], 1e-9)
	assert.InDelta(t, 4.80, res.Sell[2], 1e-9)
	assert.InDelta(t, 1.623, res.Margins[2][2], 1e-3)
	assert.Equal(t, costing.BandHealthy, res.Bands[2][2])
}

func TestMatrix_ExplicitPrices(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/matrix", map[string]any{
		"scenario": referenceScenario,
		"buy":      []float64{2.0, 3.5},
		"sell":     []float64{3.0, 4.0, 5.0},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[matrixResponse](t, rec)
	require.Len(t, res.Margins, 2)
	require.Len(t, res.Margins[0], 3)
	assert.Less(t, res.Margins[1][0], 0.0)
	assert.Equal(t, costing.BandLoss, res.Bands[1][0])
}

func TestReverse_PlansRawPurchase(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/reverse", map[string]any{"scenario": referenceScenario, "target_units": 100})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan := decode[costing.ReversePlan](t, rec)
	assert.InDelta(t, 300.0, plan.TargetFinalKg, 1e-9)
	assert.InDelta(t, 255.0, plan.CleanKg, 1e-9)
	assert.InDelta(t, 255.0/(42.7/60), plan.RequiredRawKg, 1e-6)
}

func TestCurve_SamplesRequestedPoints(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/calc/curve", map[string]any{"scenario": referenceScenario, "max_kg": 400, "points": 5})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Points []costing.CurvePoint `json:"points"`
	}](t, rec)
	require.Len(t, res.Points, 5)
	assert.InDelta(t, 0.0, res.Points[0].Kg, 1e-12)
	assert.InDelta(t, 400.0, res.Points[4].Kg, 1e-9)
	assert.InDelta(t, -320.0, res.Points[0].Profit, 1e-9)
}

func TestPaymentTerms_Listed(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodGet, "/api/payment-terms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	terms := decode[[]deal.PaymentTerm](t, rec)
	require.Len(t, terms, 4)
	assert.Equal(t, "cash", terms[0].Code)
	assert.Equal(t, "net90", terms[3].Code)
}

func TestDeal_SimulateWithPaymentTerm(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/deals/simulate", map[string]any{
		"qty_kg":           10000,
		"price_per_kg":     4.5,
		"base_cost_per_kg": 3.9,
		"overhead_per_kg":  0.3,
		"payment_term":     "net60",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dealResponse](t, rec)
	assert.InDelta(t, 45000.0, res.Revenue, 1e-6)
	assert.InDelta(t, 42000.0, res.CostOfGoods, 1e-6)
	assert.InDelta(t, 900.0, res.FinanceCost, 1e-6)
	assert.InDelta(t, 2100.0, res.NetProfit, 1e-6)
	assert.InDelta(t, 0.02, res.FinanceRate, 1e-12)
	assert.True(t, res.Profitable)
}

func TestDeal_Errors(t *testing.T) {
	c := newTestClient(t)

	rec := c.do(http.MethodPost, "/api/deals/simulate", map[string]any{"qty_kg": 10, "payment_term": "net45"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, "/api/deals/simulate", map[string]any{"qty_kg": 10, "finance_rate": 1.5})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "finance_rate", decode[errorBody](t, rec).Field)

	rec = c.do(http.MethodPost, "/api/deals/simulate", map[string]any{"qty_kg": -1})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "qty_kg", decode[errorBody](t, rec).Field)
}
