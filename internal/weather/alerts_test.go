package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `{"features":[{"properties":{"id":"urn:1","areaDesc":"Madison","event":"Winter Storm Warning","severity":"Severe","description":"Snow","instruction":"Stay home","effective":"2025-01-10T06:00:00-06:00","expires":"2025-01-11T06:00:00-06:00"}}]}`

func TestAlerts_MapsFeatures(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	alerts := NewClient(srv.URL, "(road-treatment, ops@example.com)", time.Second).Alerts(context.Background())
	require.Len(t, alerts, 1)
	assert.Equal(t, "Winter Storm Warning", alerts[0].Event)
	assert.Equal(t, "Madison", alerts[0].AreaDesc)
	assert.Equal(t, "Severe", alerts[0].Severity)
	assert.Equal(t, "(road-treatment, ops@example.com)", ua)
}

func TestAlerts_RetriesThenDegrades(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	alerts := NewClient(srv.URL, "", 5*time.Second).Alerts(context.Background())
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAlerts_TimeoutDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	alerts := NewClient(srv.URL, "", 100*time.Millisecond).Alerts(context.Background())
	assert.Empty(t, alerts)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAlerts_BadPayloadDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	assert.Empty(t, NewClient(srv.URL, "", time.Second).Alerts(context.Background()))
}
