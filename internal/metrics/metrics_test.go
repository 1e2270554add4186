package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/tempus/internal/apperr"
)

func TestObserve(t *testing.T) {
	c := New(prometheus.NewRegistry(), "test")
	c.Observe("add", time.Now(), nil)
	c.Observe("add", time.Now(), fmt.Errorf("engine: %w", apperr.ErrFaultyCalendarResult))
	c.Observe("round", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(c.operations.WithLabelValues("add", "ok")); got != 1 {
		t.Fatalf("ok count = %v", got)
	}
	if got := testutil.ToFloat64(c.errors.WithLabelValues("contract")); got != 1 {
		t.Fatalf("contract count = %v", got)
	}
	if got := testutil.ToFloat64(c.errors.WithLabelValues("internal")); got != 1 {
		t.Fatalf("internal count = %v", got)
	}
}

func TestCatalogLoaded(t *testing.T) {
	c := New(nil, "")
	c.CatalogLoaded(3, nil)
	c.CatalogLoaded(2, errors.New("bad yaml"))
	if got := testutil.ToFloat64(c.zones); got != 2 {
		t.Fatalf("catalog size = %v", got)
	}
	if got := testutil.ToFloat64(c.reloads.WithLabelValues("error")); got != 1 {
		t.Fatalf("reload errors = %v", got)
	}
}

func TestHandler(t *testing.T) {
	c := New(nil, "tempus")
	c.Observe("until", time.Now(), nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `tempus_calc_operations_total{op="until",result="ok"} 1`) {
		t.Fatalf("missing counter in:\n%s", rec.Body.String())
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Observe("add", time.Now(), nil)
	c.CatalogLoaded(1, nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
