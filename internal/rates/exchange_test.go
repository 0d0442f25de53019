package rates

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestExchange(url string) *ExchangeClient {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExchangeClient(nil, 0, logger).WithURL(url)
}

func TestExchangeRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"JPY","rates":{"USD":0.0068,"EUR":0.0061}}`))
	}))
	defer server.Close()

	rate := newTestExchange(server.URL).Rate(context.Background())
	assert.InDelta(t, 0.0068, rate, 1e-9)
}

func TestExchangeRateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rate := newTestExchange(server.URL).Rate(context.Background())
	assert.Equal(t, FallbackJPYToUSD, rate)
}

func TestExchangeRateMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"EUR":0.0061}}`))
	}))
	defer server.Close()

	rate := newTestExchange(server.URL).Rate(context.Background())
	assert.Equal(t, FallbackJPYToUSD, rate)
}

func TestExchangeRateUnreachable(t *testing.T) {
	rate := newTestExchange("http://127.0.0.1:1").Rate(context.Background())
	assert.Equal(t, FallbackJPYToUSD, rate)
}
