package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
)

// GeminiClient implements AIClient against the Google Gemini API.
type GeminiClient struct {
	model   *genai.GenerativeModel
	client  *genai.Client
	timeout time.Duration
	log     logging.Logger
}

// NewGeminiClient creates a Gemini-backed categorization client.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		model:   client.GenerativeModel(modelName),
		client:  client,
		timeout: timeout,
		log:     logger,
	}, nil
}

// Close releases the underlying API client.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Categorize asks the model to pick one category for the transaction.
func (g *GeminiClient) Categorize(ctx context.Context, tx models.Transaction, categories []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildPrompt(tx, categories)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	category := extractCategory(responseText, categories)

	g.log.Debug("model categorized transaction",
		logging.F("payee", tx.Description),
		logging.F("category", category))
	return category, nil
}

func buildPrompt(tx models.Transaction, categories []string) string {
	return fmt.Sprintf(`Categorize the following financial transaction:
Payee: %s
Amount: %s %s
Date: %s
Additional Info: %s

Please assign this transaction to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]`,
		tx.Description,
		tx.Amount.String(),
		tx.Currency,
		tx.Date.Format("2006-01-02"),
		tx.Memo,
		strings.Join(categories, ", "))
}

// extractCategory parses the structured response line, falling back to
// scanning the raw text for any known category name.
func extractCategory(response string, categories []string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Category:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
		}
	}
	for _, category := range categories {
		if strings.Contains(response, category) {
			return category
		}
	}
	return ""
}
