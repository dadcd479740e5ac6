package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sinkfmt"
)

func TestIdentitySetFromValues(t *testing.T) {
	values := [][]interface{}{
		{"stripe_ch_1", "19/11/2025", "-5.00", "CHF", "Coffee"},
		{"", "19/11/2025", "-7.00", "CHF", "Manual entry"},
		{"stripe_ch_2", "20/11/2025", "12.00", "CHF", "Refund"},
		{},
	}

	ids := identitySetFromValues(values)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "stripe_ch_1")
	assert.Contains(t, ids, "stripe_ch_2")
}

func TestAnchorFromValues(t *testing.T) {
	values := [][]interface{}{
		{"", "19/11/2025", "-5.00", "CHF", "Older"},
		{"", "Total", "100.00", "CHF", "Summary line"},
		{"", "20/11/2025", "-7.00", "CHF", "Newer"},
		{"", "20/11/2025", "12.00", "CHF", "Also newer"},
	}

	anchor := anchorFromValues(values)
	require.NotNil(t, anchor.LatestDate)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), *anchor.LatestDate)
	require.Len(t, anchor.LatestDateRows, 2)
	assert.Equal(t, models.LedgerRow{
		DateText:        "20/11/2025",
		AmountText:      "-7.00",
		DescriptionText: "Newer",
	}, anchor.LatestDateRows[0])
}

func TestAnchorFromValuesEmptySheet(t *testing.T) {
	anchor := anchorFromValues(nil)
	assert.Nil(t, anchor.LatestDate)
	assert.Empty(t, anchor.LatestDateRows)
}

func TestRowValues(t *testing.T) {
	tx := models.Transaction{
		ID:          "paypal_abc",
		Date:        time.Date(2025, 11, 21, 14, 30, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("42.5"),
		Currency:    "EUR",
		Direction:   models.DirectionIncome,
		Description: "  Invoice 12  ",
		Category:    "Sales",
		Account:     "paypal-balance",
	}

	values := rowValues(tx, sinkfmt.DefaultRules())
	require.Len(t, values, 7)
	assert.Equal(t, "paypal_abc", values[0])
	assert.Equal(t, "21/11/2025", values[1])
	assert.Equal(t, "42.50", values[2])
	assert.Equal(t, "EUR", values[3])
	assert.Equal(t, "Invoice 12", values[4])
	assert.Equal(t, "Sales", values[5])
	assert.Equal(t, "paypal-balance", values[6])
}

func TestDataRange(t *testing.T) {
	assert.Equal(t, "main!A2:G", dataRange("main"))
}
