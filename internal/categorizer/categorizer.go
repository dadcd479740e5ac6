// Package categorizer assigns categories to transactions using three
// methods in order: a learned payee-to-category mapping, local keyword
// rules, and an AI model as a fallback. Categorization is best-effort
// and never fails a sync run.
package categorizer

import (
	"context"
	"strings"
	"sync"

	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/store"
)

// Categorizer categorizes transactions and learns payee mappings from
// AI answers so later runs skip the model.
type Categorizer struct {
	store    *store.CategoryStore
	ai       AIClient
	fallback string
	log      logging.Logger

	mu     sync.RWMutex
	rules  []store.CategoryRule
	payees map[string]string
	dirty  bool
}

// New creates a categorizer backed by the given store. The AI client is
// optional; without one, unmatched transactions get the fallback
// category.
func New(categoryStore *store.CategoryStore, ai AIClient, fallbackCategory string, logger logging.Logger) (*Categorizer, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if fallbackCategory == "" {
		fallbackCategory = "Uncategorized"
	}

	rules, err := categoryStore.LoadCategories()
	if err != nil {
		return nil, err
	}
	payees, err := categoryStore.LoadPayeeMappings()
	if err != nil {
		return nil, err
	}

	return &Categorizer{
		store:    categoryStore,
		ai:       ai,
		fallback: fallbackCategory,
		log:      logger,
		rules:    rules,
		payees:   payees,
	}, nil
}

// payeeKey normalizes a transaction's description for mapping lookups.
func payeeKey(tx models.Transaction) string {
	key := strings.TrimSpace(tx.Description)
	if key == "" {
		key = strings.TrimSpace(tx.Memo)
	}
	return key
}

// Categorize assigns a category to a single transaction. Transactions
// that already carry a category are left alone.
func (c *Categorizer) Categorize(ctx context.Context, tx models.Transaction) models.Transaction {
	if tx.Category != "" {
		return tx
	}

	key := payeeKey(tx)
	if key == "" {
		tx.Category = c.fallback
		return tx
	}

	if category, ok := c.lookupPayee(key); ok {
		tx.Category = category
		return tx
	}
	if category, ok := c.matchKeywords(key); ok {
		tx.Category = category
		return tx
	}

	if c.ai != nil {
		category, err := c.ai.Categorize(ctx, tx, c.categoryNames())
		if err != nil {
			c.log.WithError(err).Warn("AI categorization failed",
				logging.F("payee", key))
		} else if category != "" {
			c.learnPayee(key, category)
			tx.Category = category
			return tx
		}
	}

	tx.Category = c.fallback
	return tx
}

// Apply categorizes a batch of transactions in place.
func (c *Categorizer) Apply(ctx context.Context, txs []models.Transaction) []models.Transaction {
	for i := range txs {
		txs[i] = c.Categorize(ctx, txs[i])
	}
	return txs
}

// Save persists payee mappings learned since the last save.
func (c *Categorizer) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	if err := c.store.SavePayeeMappings(c.payees); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func (c *Categorizer) lookupPayee(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if category, ok := c.payees[key]; ok {
		return category, true
	}
	// Fall back to a case-insensitive scan for hand-edited files.
	lower := strings.ToLower(key)
	for payee, category := range c.payees {
		if strings.ToLower(payee) == lower {
			return category, true
		}
	}
	return "", false
}

func (c *Categorizer) matchKeywords(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text := strings.ToLower(key)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Name, true
			}
		}
	}
	return "", false
}

func (c *Categorizer) categoryNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		names = append(names, rule.Name)
	}
	return names
}

func (c *Categorizer) learnPayee(key, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payees[key] = category
	c.dirty = true
	c.log.Debug("learned payee mapping",
		logging.F("payee", key),
		logging.F("category", category))
}
