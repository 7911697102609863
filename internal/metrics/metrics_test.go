package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/plan", "GET", 200, 15*time.Millisecond)
	m.ObserveRequest("/api/plan", "GET", 200, 5*time.Millisecond)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/plan", "GET", "200"))
	if got != 2 {
		t.Fatalf("requests = %v; want 2", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.PlanComputed("lose")
	m.MealLogged()
	m.MealLogged()
	m.WeightLogged()

	if got := testutil.ToFloat64(m.PlansComputed.WithLabelValues("lose")); got != 1 {
		t.Errorf("plans = %v", got)
	}
	if got := testutil.ToFloat64(m.MealsLogged); got != 2 {
		t.Errorf("meals = %v", got)
	}
	if got := testutil.ToFloat64(m.WeightsLogged); got != 1 {
		t.Errorf("weights = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.MealLogged()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "calories_meals_logged_total 1") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
