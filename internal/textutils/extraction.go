// Package textutils extracts structured hints from free-form remittance
// and description text.
package textutils

import (
	"regexp"
	"strings"
)

var payeePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Payee:\s*([^,;]+)`),
	regexp.MustCompile(`Bénéficiaire:\s*([^,;]+)`),
	regexp.MustCompile(`Recipient:\s*([^,;]+)`),
	regexp.MustCompile(`Payment to:\s*([^,;]+)`),
}

var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)at\s+(.+?)(?:\s+on|$)`),
	regexp.MustCompile(`(?i)chez\s+(.+?)(?:\s+le|$)`),
	regexp.MustCompile(`(?i)auprès de\s+(.+?)(?:\s+le|$)`),
}

// ExtractPayee tries to extract a payee from remittance information.
func ExtractPayee(ustrd string) string {
	for _, re := range payeePatterns {
		if matches := re.FindStringSubmatch(ustrd); len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}
	return ""
}

// ExtractMerchant extracts a merchant name from card and TWINT payment
// descriptions, where the merchant follows "at" or its French variants.
func ExtractMerchant(description string) string {
	lowered := strings.ToLower(description)
	if !strings.Contains(lowered, "card purchase") && !strings.Contains(lowered, "twint") {
		return ""
	}
	for _, re := range merchantPatterns {
		if matches := re.FindStringSubmatch(lowered); len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}
	return ""
}
