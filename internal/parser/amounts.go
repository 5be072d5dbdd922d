package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// Column boundaries of the printed statement table. A matched amount is
// assigned by the character column it starts at.
const (
	debitColumn   = 60
	creditColumn  = 80
	balanceColumn = 100
)

// parseAmounts classifies the decimal amounts on an amount line by column.
// Amounts left of the debit column are ignored but still end the prefix.
func parseAmounts(line string) models.AmountSet {
	var result models.AmountSet

	matches := amountPattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		result.Prefix = strings.TrimSpace(line)
		return result
	}

	for _, m := range matches {
		amt := strings.ReplaceAll(line[m[0]:m[1]], ",", "")
		// Column in characters, not bytes: prefixes carry Albanian letters.
		col := utf8.RuneCountInString(line[:m[0]])
		switch {
		case col >= balanceColumn:
			result.Balance = amt
		case col >= creditColumn:
			result.Credit = amt
		case col >= debitColumn:
			result.Debit = amt
		}
	}

	result.Prefix = strings.TrimSpace(line[:matches[0][0]])
	return result
}
