package lexcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hukukai/lexcore/internal/corpus"
	"github.com/hukukai/lexcore/internal/domain/category"
	"github.com/hukukai/lexcore/internal/domain/document"
	"github.com/hukukai/lexcore/internal/domain/rule"
	"github.com/hukukai/lexcore/internal/ruleset"
	advisoruc "github.com/hukukai/lexcore/internal/usecase/advisor"
	"github.com/hukukai/lexcore/internal/usecase/retrieval"
	"github.com/hukukai/lexcore/internal/usecase/rules"
)

// Client is the lexcore SDK entry point.
type Client struct {
	retrieval *retrieval.Service
	rules     *rules.Engine
	advisor   *advisoruc.Service
	byCat     map[string]int
	ruleCats  int
	skipped   int
	obs       *observer
}

// New loads the corpus and rule configuration and builds the engines.
// The context bounds load-time document embedding only. Load problems that
// the engines tolerate (missing files, skipped rule entries, failed
// document embeddings) are logged, not returned.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.embedTimeout <= 0 {
		cfg.embedTimeout = retrieval.DefaultEmbedTimeout
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	docs, err := loadCorpus(cfg)
	if err != nil {
		return nil, err
	}
	rs, diags := loadRules(cfg)
	for _, d := range diags {
		obs.warn("rule entry skipped", "error", d)
	}

	var (
		domEmb  *embedderAdapter
		primary retrieval.Scorer
	)
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
		primary = retrieval.NewEmbeddingScorer(domEmb, cfg.embedTimeout, nil)
	}

	start := time.Now()
	var index *retrieval.Index
	if domEmb != nil {
		index = retrieval.BuildIndex(ctx, docs, domEmb, retrieval.IndexOptions{
			Timeout:     cfg.embedTimeout,
			Concurrency: cfg.concurrency,
		}, nil)
	} else {
		index = retrieval.NewIndex(docs)
	}
	obs.info("corpus loaded",
		"documents", index.Len(),
		"vectors", index.VectorCount(),
		"rule_categories", len(rs),
		"took", time.Since(start),
	)

	searchOpts := []retrieval.Option{}
	ruleOpts := []rules.Option{}
	if cfg.now != nil {
		ruleOpts = append(ruleOpts, rules.WithClock(cfg.now))
	}
	if m := obs.metrics; m != nil {
		searchOpts = append(searchOpts,
			retrieval.WithSearchCounter(m.searches),
			retrieval.WithFallbackCounter(m.fallbacks),
		)
		ruleOpts = append(ruleOpts, rules.WithWarningCounter(m.warnings))
	}

	searchSvc := retrieval.New(index, primary, searchOpts...)
	engine := rules.New(rs, ruleOpts...)

	return &Client{
		retrieval: searchSvc,
		rules:     engine,
		advisor:   advisoruc.New(engine, searchSvc),
		byCat:     corpus.Stats(index.Documents()),
		ruleCats:  len(rs),
		skipped:   len(diags),
		obs:       obs,
	}, nil
}

func loadCorpus(cfg *clientConfig) ([]document.Document, error) {
	if cfg.hasCorpusText {
		return corpus.Parse(cfg.corpusText), nil
	}
	if cfg.corpusPath == "" {
		return nil, nil
	}
	docs, err := corpus.LoadFile(cfg.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("lexcore: %w", err)
	}
	return docs, nil
}

func loadRules(cfg *clientConfig) (rule.RuleSet, []error) {
	if cfg.hasRulesData {
		return ruleset.Decode(cfg.rulesData)
	}
	if cfg.rulesPath == "" {
		return rule.RuleSet{}, nil
	}
	return ruleset.LoadFile(cfg.rulesPath)
}

// Search ranks corpus documents against query, restricted to category when
// non-empty.
func (c *Client) Search(ctx context.Context, query, category string) SearchResponse {
	start := time.Now()
	results, backend := c.retrieval.Search(ctx, query, category)
	c.obs.observe("search", start, nil, "backend", string(backend), "results", len(results))

	out := SearchResponse{Backend: string(backend), Results: make([]SearchResult, len(results))}
	for i := range results {
		d := &results[i].Document
		out.Results[i] = SearchResult{
			ID:       d.ID(),
			Title:    d.Title(),
			Content:  d.Content(),
			Category: d.Category(),
			Extra:    d.Extra(),
			Score:    results[i].Score,
		}
	}
	return out
}

// BestMatchSummary renders the top result as "KANUN: ...\nİÇERİK: ...".
// A query shorter than three characters yields "" and no match yields the
// fixed no-match sentence.
func (c *Client) BestMatchSummary(ctx context.Context, query, category string) string {
	start := time.Now()
	s := c.retrieval.BestMatchSummary(ctx, query, category)
	c.obs.observe("best_match", start, nil)
	return s
}

// Evaluate checks user and OCR text against the category's rules.
func (c *Client) Evaluate(category, userText, ocrText string) Evaluation {
	start := time.Now()
	ws := c.rules.Check(category, userText, ocrText)
	c.obs.observe("evaluate", start, nil, "category", category, "warnings", len(ws))

	ev := Evaluation{Warnings: toWarnings(ws)}
	for i, w := range ws {
		if i > 0 {
			ev.Summary += "\n"
		}
		ev.Summary += w.Message
	}
	return ev
}

// Analyze runs rules and retrieval for one request and builds the drafting
// prompt context. It returns ErrInvalidInput for an empty or unknown
// category, or when both texts are empty.
func (c *Client) Analyze(ctx context.Context, category, userText, ocrText string) (_ Analysis, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analyze", start, err, "category", category) }()

	report, err := c.advisor.Analyze(ctx, category, userText, ocrText)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return Analysis{
		Warnings:  toWarnings(report.Warnings),
		Reference: report.Reference,
		Context:   report.Context,
	}, nil
}

// Stats describes the loaded corpus and rule set.
func (c *Client) Stats() Stats {
	idx := c.retrieval.Index()
	byCat := make(map[string]int, len(c.byCat))
	for k, v := range c.byCat {
		byCat[k] = v
	}
	return Stats{
		Documents:      idx.Len(),
		Vectors:        idx.VectorCount(),
		ByCategory:     byCat,
		RuleCategories: c.ruleCats,
		SkippedRules:   c.skipped,
		Backend:        string(c.retrieval.Backend()),
	}
}

// Categories lists the petition categories ordered by ID.
func (c *Client) Categories() []Category {
	all := category.All()
	out := make([]Category, len(all))
	for i, cat := range all {
		out[i] = Category{ID: cat.ID, Title: cat.Title, Law: cat.Law, RequiredFields: cat.RequiredFields}
	}
	return out
}

// IsInvalidInput reports whether err was caused by a malformed request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func toWarnings(ws []rules.Warning) []Warning {
	out := make([]Warning, len(ws))
	for i, w := range ws {
		out[i] = Warning{Kind: string(w.Kind), Message: w.Message}
	}
	return out
}
