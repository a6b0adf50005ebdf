package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zoover/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are non-empty
	observability.ObserveHTTP("/accommodations", "GET", 200, 12*time.Millisecond)
	observability.ObserveImportRecords("review", "skipped", 2)
	observability.ObserveImportBatch("review", errors.New("boom"), time.Second)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"zoover_http_requests_total",
		`zoover_import_records_total{kind="review",outcome="skipped"}`,
		`zoover_import_batch_duration_seconds_count{kind="review",status="rolled_back"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}
