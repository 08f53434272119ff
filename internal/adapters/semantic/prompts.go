package semantic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

const matchSystemPrompt = "You are a meticulous reconciliation accountant who pairs records from two financial sources. Always respond with valid JSON."

const classifySystemPrompt = "You are a reconciliation accountant who explains why records have no counterpart. Always respond with valid JSON."

// buildMatchPrompt creates the fuzzy matching prompt for one batch
func buildMatchPrompt(req matcher.BatchMatchRequest) (string, error) {
	rowsA, err := json.MarshalIndent(req.RowsA, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s rows: %w", req.SourceALabel, err)
	}
	rowsB, err := json.MarshalIndent(req.RowsB, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s rows: %w", req.SourceBLabel, err)
	}

	return fmt.Sprintf(`Match records from source A (%s) to source B (%s) that describe the same real-world transaction.

Column mapping (A column <-> B column [type]):
%s

Source A records:
%s

Source B records:
%s

IMPORTANT Instructions:
1. The two sources may use opposite sign conventions (a debit in one is a credit in the other)
2. Posting dates may differ by several days
3. Descriptions may be abbreviated, truncated or use synonyms ("AMZN Mktp" is Amazon Marketplace)
4. Reference numbers may carry different prefixes or padding ("CHK#001234" and "1234")
5. Each record may be matched at most once
6. Use the "index" value of each record, not its position in the list
7. Provide a confidence from 0 to 100 and a one-sentence reasoning
8. Leave out pairs you are not reasonably sure about

Return the result as a JSON object with this structure:
{
  "matches": [
    {
      "sourceAIdx": 0,
      "sourceBIdx": 3,
      "confidence": 85,
      "reasoning": "same merchant, amount and sign flipped, posted two days later"
    }
  ]
}`, req.SourceALabel, req.SourceBLabel, req.ColumnMapping, rowsA, rowsB), nil
}

// buildClassifyPrompt creates the exception classification prompt
func buildClassifyPrompt(items []matcher.UnmatchedItem, labelA, labelB string) (string, error) {
	encoded, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode unmatched items: %w", err)
	}

	var categories strings.Builder
	for _, c := range matcher.Categories {
		fmt.Fprintf(&categories, "- %s\n", c)
	}

	return fmt.Sprintf(`The following records from source A (%s) and source B (%s) have no counterpart in the other source.

Unmatched records:
%s

Available categories:
%s
IMPORTANT Instructions:
1. Assign every record exactly one category from the list above
2. "outstanding_check" and "deposit_in_transit" are items recorded in the books but not yet cleared by the bank
3. "bank_fee" and "interest" are items the bank recorded that the books have not
4. Use "timing_difference" for items that will likely clear in the next period
5. Use "other" only when nothing else fits
6. Keep each reason under fifteen words
7. Echo back the "source" and "rowIndex" of each record unchanged

Return the result as a JSON object with this structure:
{
  "classifications": [
    {
      "source": "A",
      "rowIndex": 4,
      "category": "bank_fee",
      "reason": "monthly account maintenance fee"
    }
  ]
}`, labelA, labelB, encoded, categories.String()), nil
}
