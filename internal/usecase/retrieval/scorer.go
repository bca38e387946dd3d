package retrieval

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/document"
)

// Acceptance thresholds. A document is returned only when its score is
// strictly greater than the threshold of the backend that scored it.
const (
	EmbeddingThreshold     = 0.25
	TermFrequencyThreshold = 0.05
)

// Backend names the similarity strategy that produced a result.
type Backend string

// Backends.
const (
	BackendNone          Backend = ""
	BackendEmbedding     Backend = "embedding"
	BackendTermFrequency Backend = "term_frequency"
)

// Query is a prepared query representation. Only the field relevant to the
// scorer that prepared it is populated.
type Query struct {
	Text   string
	Terms  TermVector
	Vector []float32
}

// Scorer is a similarity strategy.
type Scorer interface {
	Name() Backend
	Threshold() float64
	// Prepare builds the query representation. false means no usable representation.
	Prepare(ctx context.Context, query string) (Query, bool)
	// Score returns false when the document lacks a representation for this backend.
	Score(q Query, doc *document.Document) (float64, bool)
}

// TermVector is a sparse token frequency map.
type TermVector map[string]int

// Tokenize lower-cases text and counts its word tokens. A token is a maximal
// run of letters, digits, combining marks or underscores.
func Tokenize(text string) TermVector {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	tv := make(TermVector, len(words))
	for _, w := range words {
		tv[w]++
	}
	return tv
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// TermCosine is the cosine similarity of two term vectors: the dot product over
// shared keys divided by the product of the full L2 norms. Either norm zero gives 0.
func TermCosine(a, b TermVector) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for k, v := range small {
		if w, ok := large[k]; ok {
			dot += float64(v) * float64(w)
		}
	}
	na, nb := termNorm(a), termNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func termNorm(v TermVector) float64 {
	var sum float64
	for _, c := range v {
		sum += float64(c) * float64(c)
	}
	return math.Sqrt(sum)
}

// Cosine is the cosine similarity of two dense vectors. Extra components of the
// longer vector are ignored for the dot product but count towards its norm.
// Either norm zero gives 0.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := range n {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, x := range a {
		na += float64(x) * float64(x)
	}
	for _, x := range b {
		nb += float64(x) * float64(x)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TermFrequencyScorer is the always-available bag-of-words backend.
type TermFrequencyScorer struct{}

// NewTermFrequencyScorer creates the term-frequency backend.
func NewTermFrequencyScorer() *TermFrequencyScorer { return &TermFrequencyScorer{} }

// Name returns BackendTermFrequency.
func (*TermFrequencyScorer) Name() Backend { return BackendTermFrequency }

// Threshold returns TermFrequencyThreshold.
func (*TermFrequencyScorer) Threshold() float64 { return TermFrequencyThreshold }

// Prepare tokenizes the query. It always succeeds.
func (*TermFrequencyScorer) Prepare(_ context.Context, query string) (Query, bool) {
	return Query{Text: query, Terms: Tokenize(query)}, true
}

// Score tokenizes the document text on demand.
func (*TermFrequencyScorer) Score(q Query, doc *document.Document) (float64, bool) {
	terms := q.Terms
	if terms == nil {
		terms = Tokenize(q.Text)
	}
	return TermCosine(terms, Tokenize(doc.Text())), true
}

// EmbeddingScorer compares a query embedding against the vectors cached on documents.
type EmbeddingScorer struct {
	embedder domain.Embedder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEmbeddingScorer creates the embedding backend. A zero timeout leaves the
// call bounded only by the caller's context.
func NewEmbeddingScorer(embedder domain.Embedder, timeout time.Duration, logger *zap.Logger) *EmbeddingScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmbeddingScorer{embedder: embedder, timeout: timeout, logger: logger}
}

// Name returns BackendEmbedding.
func (*EmbeddingScorer) Name() Backend { return BackendEmbedding }

// Threshold returns EmbeddingThreshold.
func (*EmbeddingScorer) Threshold() float64 { return EmbeddingThreshold }

// Prepare embeds the query. Any provider failure yields false.
func (s *EmbeddingScorer) Prepare(ctx context.Context, query string) (Query, bool) {
	vec, err := embedText(ctx, s.embedder, query, s.timeout)
	if err != nil {
		s.logger.Warn("query embedding unavailable", zap.Error(err))
		return Query{}, false
	}
	return Query{Text: query, Vector: vec}, true
}

// Score compares against the cached document vector.
func (*EmbeddingScorer) Score(q Query, doc *document.Document) (float64, bool) {
	if !doc.HasVector() || len(q.Vector) == 0 {
		return 0, false
	}
	return Cosine(q.Vector, doc.Vector()), true
}

// embedText requests one embedding with newlines flattened, bounded by timeout.
func embedText(ctx context.Context, e domain.Embedder, text string, timeout time.Duration) ([]float32, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := e.Embed(ctx, strings.ReplaceAll(text, "\n", " "))
	if err != nil {
		return nil, err //nolint:wrapcheck // callers only log
	}
	if len(res.Embedding) == 0 {
		return nil, domain.ErrEmbeddingProviderError
	}
	return res.Embedding, nil
}
