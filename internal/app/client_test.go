package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"netcover.onebusaway.org/internal/metrics"
)

func TestLatencyTrackingRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := &http.Client{Transport: &latencyTrackingRoundTripper{next: http.DefaultTransport}}
	resp, err := client.Get(server.URL + "/bundle.zip?key=secret")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	observer, err := metrics.OutgoingLatency.GetMetricWithLabelValues(server.URL+"/bundle.zip", http.MethodGet, "418")
	if err != nil {
		t.Fatalf("failed to get histogram: %v", err)
	}
	var m dto.Metric
	if err := observer.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 1 {
		t.Errorf("expected 1 observation without the query string, got %d", got)
	}
}

func TestNewPooledClient(t *testing.T) {
	client := NewPooledClient()
	if client.Timeout == 0 {
		t.Error("expected an overall client timeout")
	}
	if _, ok := client.Transport.(*latencyTrackingRoundTripper); !ok {
		t.Errorf("expected a latency tracking transport, got %T", client.Transport)
	}
}
