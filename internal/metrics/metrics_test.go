package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder("inventory")

	r.Observe("create", "ok", time.Now())
	r.Observe("create", "ok", time.Now())
	r.Observe("create", "validation", time.Now())

	if got := testutil.ToFloat64(r.operations.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("create/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("create", "validation")); got != 1 {
		t.Errorf("create/validation = %v, want 1", got)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Observe("list", "ok", time.Now())
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder("inventory")
	r.Observe("delete", "not_found", time.Now())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `inventory_resource_operations_total{operation="delete",result="not_found"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

func TestFmtFixer(t *testing.T) {
	if got := FmtFixer("my-app.v1"); got != "my_app_v1" {
		t.Fatalf("FmtFixer = %q, want my_app_v1", got)
	}
}
