package categorizer

import (
	"context"

	"fjacquet/ledger-sync/internal/models"
)

// AIClient is the interface for model-backed categorization. Categorize
// returns the chosen category name, which should be one of the given
// candidates when any were provided.
type AIClient interface {
	Categorize(ctx context.Context, tx models.Transaction, categories []string) (string, error)
}
