package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"assetgate/internal/services"
)

func TestObserveResource(t *testing.T) {
	created := resourcesTotal.WithLabelValues(ResourceFormat, "created")
	reused := resourcesTotal.WithLabelValues(ResourceFormat, "reused")
	beforeCreated := testutil.ToFloat64(created)
	beforeReused := testutil.ToFloat64(reused)

	ObserveResource(ResourceFormat, false)
	ObserveResource(ResourceFormat, true)
	ObserveResource(ResourceFormat, true)

	if got := testutil.ToFloat64(created) - beforeCreated; got != 1 {
		t.Fatalf("expected 1 created, got %v", got)
	}
	if got := testutil.ToFloat64(reused) - beforeReused; got != 2 {
		t.Fatalf("expected 2 reused, got %v", got)
	}
}

func TestObserveJobIgnoresEmptyOutcome(t *testing.T) {
	before := testutil.CollectAndCount(jobsTotal)
	ObserveJob("mediainfo", "")
	if after := testutil.CollectAndCount(jobsTotal); after != before {
		t.Fatalf("expected no new series, got %d -> %d", before, after)
	}
	ObserveJob("mediainfo", "triggered")
	if got := testutil.ToFloat64(jobsTotal.WithLabelValues("mediainfo", "triggered")); got < 1 {
		t.Fatalf("expected triggered counter, got %v", got)
	}
}

func TestObserveFile(t *testing.T) {
	counter := filesTotal.WithLabelValues(string(services.OutcomeRejected))
	before := testutil.ToFloat64(counter)
	ObserveFile(services.OutcomeRejected)
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected 1 rejected, got %v", got)
	}
}

func TestRouterServesMetricsAndHealth(t *testing.T) {
	ObserveStepFailure("collections")
	srv := httptest.NewServer(NewRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "assetgate_step_failures_total") {
		t.Fatalf("expected step failure counter in exposition, got %q", string(body))
	}
}

func TestServerStopsOnCancel(t *testing.T) {
	server, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	resp, err := http.Get("http://" + server.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
