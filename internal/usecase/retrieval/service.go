// Package retrieval ranks corpus documents against free-form text.
//
// Two similarity backends share the Scorer contract: the embedding backend
// (primary when a provider is configured) and the term-frequency backend,
// which is always available and serves as the per-call fallback.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hukukai/lexcore/internal/domain/document"
)

// MinQueryLength is the shortest query, in characters, that is searched.
const MinQueryLength = 3

// NoMatchSummary is returned by BestMatchSummary when nothing passes the threshold.
const NoMatchSummary = "Özel bir mevzuat eşleşmesi bulunamadı."

// Fallback reasons.
const (
	FallbackNoQueryVector     = "no_query_vector"
	FallbackNoDocumentVectors = "no_document_vectors"
)

// Result is one ranked document.
type Result struct {
	Document document.Document
	Score    float64
}

// Service orchestrates backend selection, category filtering, thresholding and ranking.
type Service struct {
	index     *Index
	primary   Scorer
	fallback  Scorer
	logger    *zap.Logger
	searches  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSearchCounter sets a counter vec with label "backend".
func WithSearchCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.searches = c }
}

// WithFallbackCounter sets a counter vec with label "reason".
func WithFallbackCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.fallbacks = c }
}

// New creates a retrieval service. A nil primary makes the term-frequency
// backend primary for the lifetime of the service.
func New(index *Index, primary Scorer, opts ...Option) *Service {
	if index == nil {
		index = NewIndex(nil)
	}
	tf := NewTermFrequencyScorer()
	if primary == nil {
		primary = tf
	}
	s := &Service{index: index, primary: primary, fallback: tf, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend reports the primary backend.
func (s *Service) Backend() Backend { return s.primary.Name() }

// Index returns the underlying corpus index.
func (s *Service) Index() *Index { return s.index }

// Search returns documents scoring above the backend threshold, best first,
// ties in load order. An empty category matches every document. Queries
// shorter than MinQueryLength return no results and BackendNone.
func (s *Service) Search(ctx context.Context, query, category string) ([]Result, Backend) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, BackendNone
	}

	candidates := s.candidates(category)
	scorer := s.primary
	if len(candidates) == 0 {
		return nil, scorer.Name()
	}

	if scorer.Name() == BackendEmbedding && !anyVector(candidates) {
		scorer = s.degrade(FallbackNoDocumentVectors)
	}
	q, ok := scorer.Prepare(ctx, query)
	if !ok {
		scorer = s.degrade(FallbackNoQueryVector)
		q, _ = scorer.Prepare(ctx, query)
	}

	results := rank(scorer, q, candidates)
	if s.searches != nil {
		s.searches.WithLabelValues(string(scorer.Name())).Inc()
	}
	s.logger.Debug("search",
		zap.String("backend", string(scorer.Name())),
		zap.String("category", category),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
	)
	return results, scorer.Name()
}

// BestMatchSummary formats the top result as "KANUN: {title}\nİÇERİK: {content}".
// Short queries yield "" and an empty result set yields NoMatchSummary.
func (s *Service) BestMatchSummary(ctx context.Context, query, category string) string {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return ""
	}
	results, _ := s.Search(ctx, query, category)
	if len(results) == 0 {
		return NoMatchSummary
	}
	return Summary(&results[0].Document)
}

// Summary renders a document as a reference block.
func Summary(doc *document.Document) string {
	return fmt.Sprintf("KANUN: %s\nİÇERİK: %s", doc.Title(), doc.Content())
}

func (s *Service) degrade(reason string) Scorer {
	s.logger.Warn("retrieval falling back to term frequency", zap.String("reason", reason))
	if s.fallbacks != nil {
		s.fallbacks.WithLabelValues(reason).Inc()
	}
	return s.fallback
}

func (s *Service) candidates(category string) []*document.Document {
	docs := s.index.Documents()
	out := make([]*document.Document, 0, len(docs))
	for i := range docs {
		if category != "" && docs[i].Category() != category {
			continue
		}
		out = append(out, &docs[i])
	}
	return out
}

func anyVector(docs []*document.Document) bool {
	for _, d := range docs {
		if d.HasVector() {
			return true
		}
	}
	return false
}

func rank(scorer Scorer, q Query, docs []*document.Document) []Result {
	threshold := scorer.Threshold()
	var results []Result
	for _, d := range docs {
		score, ok := scorer.Score(q, d)
		if !ok || score <= threshold {
			continue
		}
		results = append(results, Result{Document: *d, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
