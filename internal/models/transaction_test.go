package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "stripe_ch_123",
		Date:        time.Date(2025, 11, 20, 14, 30, 0, 0, time.UTC),
		Amount:      decimal.NewFromFloat(49.90),
		Currency:    "eur",
		Direction:   DirectionIncome,
		Description: "Subscription payment",
		Account:     "stripe",
	}
}

func TestNewTransaction(t *testing.T) {
	t.Run("valid transaction passes and is normalized", func(t *testing.T) {
		tx, err := NewTransaction(validTransaction())
		require.NoError(t, err)
		assert.Equal(t, "EUR", tx.Currency)
		assert.Equal(t, time.UTC, tx.Date.Location())
	})

	t.Run("missing id rejected", func(t *testing.T) {
		tx := validTransaction()
		tx.ID = ""
		_, err := NewTransaction(tx)
		assert.Error(t, err)
	})

	t.Run("zero date rejected", func(t *testing.T) {
		tx := validTransaction()
		tx.Date = time.Time{}
		_, err := NewTransaction(tx)
		assert.Error(t, err)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = decimal.NewFromFloat(-10)
		_, err := NewTransaction(tx)
		assert.Error(t, err)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = decimal.Zero
		_, err := NewTransaction(tx)
		assert.Error(t, err)
	})

	t.Run("unknown direction rejected", func(t *testing.T) {
		tx := validTransaction()
		tx.Direction = "sideways"
		_, err := NewTransaction(tx)
		assert.Error(t, err)
	})
}

func TestSignedAmount(t *testing.T) {
	tx := validTransaction()
	assert.True(t, tx.SignedAmount().Equal(decimal.NewFromFloat(49.90)))

	tx.Direction = DirectionExpense
	assert.True(t, tx.SignedAmount().Equal(decimal.NewFromFloat(-49.90)))
}

func TestSynthesizeID(t *testing.T) {
	date := time.Date(2025, 11, 20, 14, 30, 0, 0, time.UTC)
	amount := decimal.NewFromFloat(120.50)

	a := SynthesizeID("paypal", date, amount, "Groceries")
	b := SynthesizeID("paypal", date, amount, " groceries ")
	c := SynthesizeID("paypal", date, amount, "Rent")
	d := SynthesizeID("stripe", date, amount, "Groceries")

	assert.Equal(t, a, b, "memo comparison is trimmed and case-insensitive")
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d, "different sources never collide")
	assert.Contains(t, a, "paypal_")
}

func TestSortByDate(t *testing.T) {
	nov := func(day int) time.Time {
		return time.Date(2025, 11, day, 0, 0, 0, 0, time.UTC)
	}
	txs := []Transaction{
		{ID: "c", Date: nov(21)},
		{ID: "a", Date: nov(18)},
		{ID: "b1", Date: nov(19)},
		{ID: "b2", Date: nov(19)},
	}

	SortByDate(txs)

	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID, txs[3].ID}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, ids)
	for i := 0; i < len(txs)-1; i++ {
		assert.False(t, txs[i].Date.After(txs[i+1].Date))
	}
}

func TestDedupeWithinBatch(t *testing.T) {
	date := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "x", Date: date, Memo: "first"},
		{ID: "y", Date: date},
		{ID: "x", Date: date, Memo: "second"},
	}

	out := DedupeWithinBatch(txs)

	require.Len(t, out, 2)
	assert.Equal(t, "y", out[0].ID)
	assert.Equal(t, "x", out[1].ID)
	assert.Equal(t, "second", out[1].Memo, "later occurrence wins")
}
