package retrieval

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/document"
)

// Defaults for BuildIndex.
const (
	DefaultEmbedTimeout     = 10 * time.Second
	DefaultEmbedConcurrency = 4
)

// IndexOptions bounds load-time vectorization.
type IndexOptions struct {
	Timeout     time.Duration // per document
	Concurrency int
}

// Index is the immutable, load-ordered corpus store.
type Index struct {
	docs    []document.Document
	vectors int
}

// BuildIndex vectorizes docs with embedder (when non-nil) and returns the
// immutable index. A failed or timed-out embedding leaves only that document
// without a vector; the load never aborts.
func BuildIndex(
	ctx context.Context, docs []document.Document, embedder domain.Embedder,
	opts IndexOptions, logger *zap.Logger,
) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]document.Document, len(docs))
	copy(out, docs)

	if embedder == nil || len(out) == 0 {
		return newIndex(out)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultEmbedTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultEmbedConcurrency
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i := range out {
		g.Go(func() error {
			vec, err := embedText(ctx, embedder, out[i].Text(), opts.Timeout)
			if err != nil {
				logger.Warn("document left without vector",
					zap.Int("position", i),
					zap.String("id", out[i].ID()),
					zap.Error(err),
				)
				return nil
			}
			out[i] = out[i].WithVector(vec)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	idx := newIndex(out)
	logger.Info("corpus vectorized",
		zap.Int("documents", idx.Len()),
		zap.Int("vectors", idx.VectorCount()),
		zap.Duration("took", time.Since(start)),
	)
	return idx
}

// NewIndex wraps already-prepared documents without vectorizing them.
func NewIndex(docs []document.Document) *Index {
	out := make([]document.Document, len(docs))
	copy(out, docs)
	return newIndex(out)
}

func newIndex(docs []document.Document) *Index {
	idx := &Index{docs: docs}
	for i := range docs {
		if docs[i].HasVector() {
			idx.vectors++
		}
	}
	return idx
}

// Len returns the number of documents.
func (x *Index) Len() int { return len(x.docs) }

// VectorCount returns the number of documents carrying a vector.
func (x *Index) VectorCount() int { return x.vectors }

// Documents returns the documents in load order. Callers must not modify the slice.
func (x *Index) Documents() []document.Document { return x.docs }
