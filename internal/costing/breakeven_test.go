package costing

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestNewBreakEven_ReferenceCrew(t *testing.T) {
	be := NewBreakEven(5*64, 1.50, DefaultBoxWeightKg)

	if !be.Reachable {
		t.Fatalf("expected reachable break-even")
	}
	nearlyEqual(t, "kg", be.Kg, 213.3333333, 1e-6)
	nearlyEqual(t, "units", be.Units, 71.1111111, 1e-6)
}

func TestNewBreakEven_NonPositiveMarginIsUnreachable(t *testing.T) {
	for _, margin := range []float64{0, -0.4} {
		be := NewBreakEven(320, margin, 3)
		if be.Reachable {
			t.Fatalf("margin %v: expected unreachable", margin)
		}
		if !math.IsInf(be.Kg, 1) || !math.IsInf(be.Units, 1) {
			t.Fatalf("margin %v: kg=%v units=%v, want +Inf", margin, be.Kg, be.Units)
		}
	}
}

func TestNewBreakEven_ZeroFixedCostIsReachableAtZero(t *testing.T) {
	be := NewBreakEven(0, 1, 3)
	if !be.Reachable || be.Kg != 0 {
		t.Fatalf("unexpected break-even %+v", be)
	}
}

func TestBreakEven_MarshalJSONUsesNullWhenUnreachable(t *testing.T) {
	out, err := json.Marshal(NewBreakEven(320, 0, 3))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(out)
	if !strings.Contains(body, `"kg":null`) || !strings.Contains(body, `"reachable":false`) {
		t.Fatalf("unexpected json %s", body)
	}
}

func TestBreakEvenUnits_ParameterisedWeight(t *testing.T) {
	nearlyEqual(t, "5kg cartons", BreakEvenUnits(100, 5), 20, 1e-12)
	nearlyEqual(t, "zero weight", BreakEvenUnits(100, 0), 0, 0)
}

func TestBreakEvenCurve_CrossesAtBreakEven(t *testing.T) {
	curve := BreakEvenCurve(320, 3, 4.5, 0, 101)

	if len(curve) != 101 {
		t.Fatalf("len = %d, want 101", len(curve))
	}
	nearlyEqual(t, "range", curve[100].Kg, 800, 1e-9)
	nearlyEqual(t, "start cost", curve[0].Cost, 320, 1e-12)
	if curve[0].Profit >= 0 || curve[100].Profit <= 0 {
		t.Fatalf("expected loss at 0 kg and profit at 800 kg: %+v %+v", curve[0], curve[100])
	}
}
