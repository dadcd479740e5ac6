package categorizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/store"
)

type stubAI struct {
	category string
	err      error
	calls    int
}

func (s *stubAI) Categorize(ctx context.Context, tx models.Transaction, categories []string) (string, error) {
	s.calls++
	return s.category, s.err
}

func testStore(t *testing.T, categoriesYAML, payeesYAML string) *store.CategoryStore {
	t.Helper()
	dir := t.TempDir()
	if categoriesYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.yaml"), []byte(categoriesYAML), 0600))
	}
	if payeesYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "payees.yaml"), []byte(payeesYAML), 0600))
	}
	return store.NewCategoryStore(dir, &logging.MockLogger{})
}

func tx(desc string) models.Transaction {
	return models.Transaction{
		ID:          "test_1",
		Date:        time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("10.00"),
		Currency:    "CHF",
		Direction:   models.DirectionExpense,
		Description: desc,
	}
}

const rulesYAML = `categories:
  - name: Groceries
    keywords:
      - migros
  - name: Transport
    keywords:
      - sbb
`

func TestPayeeMappingWinsOverKeywords(t *testing.T) {
	s := testStore(t, rulesYAML, "MIGROS Zurich: Dining\n")
	c, err := New(s, nil, "", &logging.MockLogger{})
	require.NoError(t, err)

	got := c.Categorize(context.Background(), tx("MIGROS Zurich"))
	assert.Equal(t, "Dining", got.Category)
}

func TestKeywordMatch(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	c, err := New(s, nil, "", &logging.MockLogger{})
	require.NoError(t, err)

	got := c.Categorize(context.Background(), tx("SBB CFF FFS ticket"))
	assert.Equal(t, "Transport", got.Category)
}

func TestExistingCategoryPreserved(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	c, err := New(s, nil, "", &logging.MockLogger{})
	require.NoError(t, err)

	preset := tx("MIGROS Zurich")
	preset.Category = "Manual"
	got := c.Categorize(context.Background(), preset)
	assert.Equal(t, "Manual", got.Category)
}

func TestAIFallbackAndLearning(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	ai := &stubAI{category: "Dining"}
	c, err := New(s, ai, "", &logging.MockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	got := c.Categorize(ctx, tx("Coffee Corner"))
	assert.Equal(t, "Dining", got.Category)
	assert.Equal(t, 1, ai.calls)

	// Second time the learned mapping answers without the model.
	got = c.Categorize(ctx, tx("Coffee Corner"))
	assert.Equal(t, "Dining", got.Category)
	assert.Equal(t, 1, ai.calls)

	require.NoError(t, c.Save())
	mappings, err := s.LoadPayeeMappings()
	require.NoError(t, err)
	assert.Equal(t, "Dining", mappings["Coffee Corner"])
}

func TestAIErrorFallsBackToDefault(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	log := &logging.MockLogger{}
	ai := &stubAI{err: errors.New("quota exceeded")}
	c, err := New(s, ai, "Misc", log)
	require.NoError(t, err)

	got := c.Categorize(context.Background(), tx("Unknown payee"))
	assert.Equal(t, "Misc", got.Category)
	assert.True(t, log.HasEntry("WARN", "AI categorization failed"))
}

func TestNoAIUsesFallback(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	c, err := New(s, nil, "", &logging.MockLogger{})
	require.NoError(t, err)

	got := c.Categorize(context.Background(), tx("Unknown payee"))
	assert.Equal(t, "Uncategorized", got.Category)
}

func TestApply(t *testing.T) {
	s := testStore(t, rulesYAML, "")
	c, err := New(s, nil, "", &logging.MockLogger{})
	require.NoError(t, err)

	txs := c.Apply(context.Background(), []models.Transaction{
		tx("migros basel"),
		tx("mystery"),
	})
	assert.Equal(t, "Groceries", txs[0].Category)
	assert.Equal(t, "Uncategorized", txs[1].Category)
}

func TestExtractCategory(t *testing.T) {
	categories := []string{"Groceries", "Transport"}

	assert.Equal(t, "Transport", extractCategory("Category: Transport\nDescription: train ticket", categories))
	assert.Equal(t, "Groceries", extractCategory("this looks like Groceries to me", categories))
	assert.Equal(t, "", extractCategory("no idea", categories))
}
