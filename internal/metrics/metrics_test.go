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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caesar-terminal/listwatch/internal/engine"
	"github.com/caesar-terminal/listwatch/internal/instrument"
	"github.com/caesar-terminal/listwatch/internal/runner"
	"github.com/caesar-terminal/listwatch/internal/store"
)

func sampleReport() runner.Report {
	return runner.Report{
		RunID:   "r1",
		Started: time.Unix(1700000000, 0),
		Markets: []runner.MarketReport{
			{
				Market:      instrument.BinanceFutures,
				Baseline:    store.Found,
				Events:      map[engine.Kind]int{engine.KindAdded: 2, engine.KindRemoved: 1},
				Instruments: 310,
				Tradable:    300,
			},
			{
				Market:      instrument.OkexSpots,
				Baseline:    store.Missing,
				Events:      map[engine.Kind]int{},
				Instruments: 700,
				Tradable:    690,
			},
		},
		Sent:      3,
		Persisted: true,
	}
}

func TestRecord(t *testing.T) {
	m := New()
	m.Record(sampleReport())
	m.Record(sampleReport())

	assert.Equal(t, 4.0, testutil.ToFloat64(m.events.WithLabelValues("BinanceFutures", "added")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("BinanceFutures", "removed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.notifications.WithLabelValues("sent")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
	assert.Equal(t, 700.0, testutil.ToFloat64(m.instruments.WithLabelValues("OkexSpots")))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.tradable.WithLabelValues("BinanceFutures")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastRun))

	rep := sampleReport()
	rep.Persisted = false
	m.Record(rep)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.persisted))
}

func TestPush(t *testing.T) {
	var method, path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.Record(sampleReport())
	require.NoError(t, m.Push(context.Background(), srv.URL, "listwatch"))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/listwatch", path)
	assert.NotEmpty(t, body)
}

func TestPush_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "listwatch")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), srv.URL))
}
