package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	return &Client{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}, server
}

func TestRate(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		fmt.Fprint(w, `{"result":"success","rates":{"KRW":1350.5,"JPY":150.2}}`)
	})
	defer server.Close()

	rate, err := client.Rate(context.Background(), "USD", "KRW")
	require.NoError(t, err)
	assert.Equal(t, 1350.5, rate)
}

func TestRate_UnknownCurrency(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":"success","rates":{"KRW":1350.5}}`)
	})
	defer server.Close()

	_, err := client.Rate(context.Background(), "USD", "XYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XYZ")
}

func TestRate_APIFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":"error"}`)
	})
	defer server.Close()

	_, err := client.Rate(context.Background(), "USD", "KRW")
	assert.Error(t, err)
}

func TestRate_HTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.Rate(context.Background(), "USD", "KRW")
	assert.Error(t, err)
}
