package lexcore

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusPath    string
	corpusText    string
	hasCorpusText bool

	rulesPath    string
	rulesData    []byte
	hasRulesData bool

	embedder     Embedder
	embedTimeout time.Duration
	concurrency  int

	now func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpusFile loads the legal corpus from a file. A missing file yields
// an empty corpus.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
	})
}

// WithCorpusText uses raw corpus text instead of a file. Takes precedence
// over WithCorpusFile.
func WithCorpusText(text string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusText = text
		c.hasCorpusText = true
	})
}

// WithRulesFile loads the rule configuration (JSON or YAML) from a file.
// A missing file yields no rules.
func WithRulesFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rulesPath = path
	})
}

// WithRulesData uses raw rule configuration instead of a file. Takes
// precedence over WithRulesFile.
func WithRulesData(data []byte) Option {
	return optionFunc(func(c *clientConfig) {
		c.rulesData = data
		c.hasRulesData = true
	})
}

// WithEmbedder enables the embedding backend. The corpus is vectorized
// during New.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbedTimeout bounds each embedding call. Default: 10s.
func WithEmbedTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = d
	})
}

// WithConcurrency bounds parallel document embedding during New. Default: 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithClock sets the instant rule date windows are measured from.
// Default: time.Now.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.now = now
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations,
// searches by backend, fallbacks, rule warnings) on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
