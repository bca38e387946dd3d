// Package advisor combines rule warnings and the best legal reference into
// the context block handed to the drafting model.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/category"
	"github.com/hukukai/lexcore/internal/usecase/rules"
)

// Report is the outcome of one analysis.
type Report struct {
	Warnings []rules.Warning
	// Reference is the best-match summary, NoMatchSummary, or "" for a too-short query.
	Reference string
	// Context is the prompt block for the drafting model.
	Context string
}

// WarningText joins warning messages by newline, "" when none fired.
func (r *Report) WarningText() string {
	msgs := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		msgs[i] = w.Message
	}
	return strings.Join(msgs, "\n")
}

// Service runs rules and retrieval for a single user request.
type Service struct {
	rules RuleEvaluator
	refs  ReferenceFinder
}

// New creates an advisor.
func New(rules RuleEvaluator, refs ReferenceFinder) *Service {
	return &Service{rules: rules, refs: refs}
}

// Analyze validates the request shape, then evaluates rules against user and
// OCR text and looks up the best reference for their concatenation.
func (s *Service) Analyze(ctx context.Context, categoryID, userText, ocrText string) (Report, error) {
	userText = strings.TrimSpace(userText)
	ocrText = strings.TrimSpace(ocrText)

	if categoryID == "" {
		return Report{}, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if _, ok := category.Lookup(categoryID); !ok {
		return Report{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, categoryID)
	}
	if userText == "" && ocrText == "" {
		return Report{}, fmt.Errorf("%w: text or ocr_text is required", domain.ErrInvalidInput)
	}

	r := Report{Warnings: s.rules.Check(categoryID, userText, ocrText)}
	r.Reference = s.refs.BestMatchSummary(ctx, userText+" "+ocrText, categoryID)
	r.Context = BuildContext(userText, ocrText, r.WarningText(), r.Reference)
	return r, nil
}

// BuildContext renders the drafting prompt block.
func BuildContext(userText, ocrText, warnings, reference string) string {
	return fmt.Sprintf("KULLANICI: %s\nOCR: %s\nRULES: %s\nRAG: %s", userText, ocrText, warnings, reference)
}
