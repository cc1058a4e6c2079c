package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

func testClient(baseURL string, retries int) *Client {
	return New(Options{
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		BaseURL:        baseURL,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchListing_Path(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	body, err := testClient(srv.URL, 0).FetchListing(context.Background(), instrument.OkexSwaps)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(body))
	assert.Equal(t, "/public/instruments", gotPath)
	assert.Equal(t, "instType=SWAP", gotQuery)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"symbols":[]}`))
	}))
	defer srv.Close()

	body, err := testClient(srv.URL, 3).Fetch(context.Background(), instrument.BinanceSpots, "/exchangeInfo")
	require.NoError(t, err)
	assert.Equal(t, `{"symbols":[]}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2).Fetch(context.Background(), instrument.BybitSpots, "/x")
	require.Error(t, err)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusTooManyRequests, serr.Code)
	assert.Equal(t, instrument.BybitSpots, serr.Market)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not found`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5).Fetch(context.Background(), instrument.BinanceFutures, "/exchangeInfo")

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.Code)
	assert.Equal(t, "not found", serr.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL, 3).Fetch(ctx, instrument.OkexSpots, "/x")
	require.Error(t, err)
}

func TestStatusError_Temporary(t *testing.T) {
	assert.True(t, (&StatusError{Code: 500}).Temporary())
	assert.True(t, (&StatusError{Code: 503}).Temporary())
	assert.True(t, (&StatusError{Code: 429}).Temporary())
	assert.False(t, (&StatusError{Code: 400}).Temporary())
	assert.False(t, (&StatusError{Code: 403}).Temporary())
}
