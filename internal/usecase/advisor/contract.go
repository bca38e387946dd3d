package advisor

import (
	"context"

	"github.com/hukukai/lexcore/internal/usecase/rules"
)

// RuleEvaluator runs the rule checklist.
type RuleEvaluator interface {
	Check(category, userText, ocrText string) []rules.Warning
}

// ReferenceFinder returns the reference block for the best-matching document.
type ReferenceFinder interface {
	BestMatchSummary(ctx context.Context, query, category string) string
}
