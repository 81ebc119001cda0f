package scheme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/iox"
	"github.com/VismaKosice/pension-engine/metrics"
)

func TestRegistryClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schemes/S1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scheme_id":"S1","accrual_rate":0.0175}`))
	}))
	defer srv.Close()

	client, err := NewRegistryClient(RegistryConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	got := client.AccrualRate(context.Background(), "S1")
	if !got.Equal(decimal.RequireFromString("0.0175")) {
		t.Errorf("rate = %s, want 0.0175", got)
	}
}

func TestRegistryClient_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "negative rate",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"scheme_id":"S1","accrual_rate":-0.02}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			collector := metrics.NewCollector()
			client, err := NewRegistryClient(RegistryConfig{BaseURL: srv.URL, Collector: collector})
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(iox.CloseFunc(client))

			got := client.AccrualRate(context.Background(), "S1")
			if !got.Equal(DefaultAccrualRate) {
				t.Errorf("rate = %s, want default %s", got, DefaultAccrualRate)
			}
			if snap := collector.Snapshot(); snap.SchemeLookupFallback != 1 {
				t.Errorf("fallback counter = %d, want 1", snap.SchemeLookupFallback)
			}
		})
	}
}

func TestRegistryClient_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewRegistryClient(RegistryConfig{
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	start := time.Now()
	got := client.AccrualRate(context.Background(), "S1")
	if !got.Equal(DefaultAccrualRate) {
		t.Errorf("rate = %s, want default on timeout", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookup took %s, timeout not applied", elapsed)
	}
}

func TestNewRegistryClient_RequiresURL(t *testing.T) {
	if _, err := NewRegistryClient(RegistryConfig{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}
