package parser

import (
	"fmt"
	"regexp"
	"strings"

	"pcs-swap/pkg/types"
)

var quotePattern = regexp.MustCompile(`^(BUY|SELL)\s+(\d+\.?\d*)$`)

// ParseQuoteCommand parses a quote command
// Examples:
//   - "buy 1"
//   - "sell 1500.25"
//   - "quote buy 0.1"
func ParseQuoteCommand(command string) (*types.QuoteRequest, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "QUOTE" if present at the beginning
	command = strings.TrimPrefix(command, "QUOTE ")

	matches := quotePattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid quote command format. Expected: 'quote <buy|sell> <amount>' (e.g., 'quote buy 1')")
	}

	return &types.QuoteRequest{
		Side:   types.Side(strings.ToLower(matches[1])),
		Amount: matches[2],
	}, nil
}

// ValidateQuoteRequest validates that a quote request has all required fields
func ValidateQuoteRequest(req *types.QuoteRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if req.Side != types.SideBuy && req.Side != types.SideSell {
		return fmt.Errorf("side must be 'buy' or 'sell'")
	}
	return nil
}
