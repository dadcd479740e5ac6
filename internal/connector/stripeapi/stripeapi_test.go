package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		Name:    "stripe",
		BaseURL: server.URL,
		APIKey:  "sk_test",
		Account: "stripe-main",
	}, &logging.MockLogger{})
}

func TestFetchPaginates(t *testing.T) {
	pages := map[string]string{
		"": `{"has_more": true, "data": [
			{"id": "ch_1", "amount": 1000, "currency": "eur", "created": 1763596800, "description": "Order 1", "status": "succeeded"},
			{"id": "ch_2", "amount": 2500, "currency": "eur", "created": 1763600400, "description": "Order 2", "status": "succeeded"}
		]}`,
		"ch_2": `{"has_more": false, "data": [
			{"id": "ch_3", "amount": 500, "currency": "eur", "created": 1763683200, "description": "Order 3", "status": "succeeded"}
		]}`,
	}

	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		page, ok := pages[r.URL.Query().Get("starting_after")]
		require.True(t, ok, "unexpected cursor %q", r.URL.Query().Get("starting_after"))
		_, _ = w.Write([]byte(page))
	})

	txs, err := conn.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "stripe_ch_1", txs[0].ID)
	assert.Equal(t, "stripe_ch_3", txs[2].ID)
	assert.Equal(t, "10.00", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, models.DirectionIncome, txs[0].Direction)
	assert.Equal(t, "stripe-main", txs[0].Account)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), txs[0].Date)
}

func TestFetchDropsNonFinalCharges(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"has_more": false, "data": [
			{"id": "ch_ok", "amount": 1000, "currency": "eur", "created": 1763596800, "status": "succeeded"},
			{"id": "ch_pending", "amount": 1000, "currency": "eur", "created": 1763596800, "status": "pending"},
			{"id": "ch_failed", "amount": 1000, "currency": "eur", "created": 1763596800, "status": "failed"}
		]}`))
	})

	txs, err := conn.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "stripe_ch_ok", txs[0].ID)
}

func TestFetchDropsZeroAmountCharges(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"has_more": false, "data": [
			{"id": "ch_free", "amount": 0, "currency": "eur", "created": 1763596800, "status": "succeeded"},
			{"id": "ch_paid", "amount": 1000, "currency": "eur", "created": 1763596800, "status": "succeeded"}
		]}`))
	})

	// A fully discounted charge must not poison the fetch; it is dropped
	// like a non-final charge.
	txs, err := conn.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "stripe_ch_paid", txs[0].ID)
}

func TestFetchRefundedChargeIsExpense(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"has_more": false, "data": [
			{"id": "ch_r", "amount": 1500, "currency": "usd", "created": 1763596800, "status": "succeeded", "refunded": true}
		]}`))
	})

	txs, err := conn.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.DirectionExpense, txs[0].Direction)
	assert.Equal(t, "15.00", txs[0].Amount.StringFixed(2), "amount stays a positive magnitude")
}

func TestFetchFailsOnAuthError(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := conn.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connector stripe")
}

func TestFetchFailsOnMalformedBody(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is not json`))
	})

	_, err := conn.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchRejectsChargeWithoutTimestamp(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		page := map[string]any{
			"has_more": false,
			"data": []map[string]any{
				{"id": "ch_1", "amount": 1000, "currency": "eur", "status": "succeeded"},
			},
		}
		_ = json.NewEncoder(w).Encode(page)
	})

	_, err := conn.Fetch(context.Background())
	require.Error(t, err, "invalid dates are rejected, not defaulted")
	assert.Contains(t, err.Error(), "timestamp")
}

func TestProbe(t *testing.T) {
	var status int
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		fmt.Fprint(w, `{"has_more": false, "data": []}`)
	})

	assert.True(t, conn.Probe(context.Background()))

	status = http.StatusUnauthorized
	assert.False(t, conn.Probe(context.Background()))
}
