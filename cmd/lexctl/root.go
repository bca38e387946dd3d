package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/hukukai/lexcore/internal/logger"
	openaiEmb "github.com/hukukai/lexcore/internal/transport/openai"
	lexcore "github.com/hukukai/lexcore/pkg/sdk"
)

var (
	corpusPath   string
	rulesPath    string
	useEmbedding bool
	outputJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "lexctl",
	Short: "Query the legal corpus and petition rules",
	Long: `lexctl loads the legal reference corpus and the rule configuration
and runs retrieval or rule evaluation locally.

Retrieval uses term-frequency similarity unless --embedding is set and
OPENAI_API_KEY holds a real key.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "data/mevzuat.txt", "legal corpus file")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "data/rules.json", "rule configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&useEmbedding, "embedding", false, "vectorize the corpus with the embedding provider")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

// newClient builds the in-process client from the persistent flags.
func newClient(ctx context.Context) (*lexcore.Client, error) {
	opts := []lexcore.Option{
		lexcore.WithCorpusFile(corpusPath),
		lexcore.WithRulesFile(rulesPath),
	}
	if useEmbedding {
		emb, err := newEmbedder()
		if err != nil {
			return nil, err
		}
		opts = append(opts, lexcore.WithEmbedder(emb))
	}
	c, err := lexcore.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

func newEmbedder() (lexcore.Embedder, error) {
	logger, err := logpkg.NewLogger("cli")
	if err != nil {
		logger = zap.NewNop()
	}
	e, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	return &providerEmbedder{inner: e}, nil
}

// providerEmbedder exposes the OpenAI adapter through the SDK contract.
type providerEmbedder struct {
	inner *openaiEmb.Embedder
}

func (p *providerEmbedder) Embed(ctx context.Context, text string) (lexcore.EmbeddingResult, error) {
	r, err := p.inner.Embed(ctx, text)
	if err != nil {
		return lexcore.EmbeddingResult{}, err //nolint:wrapcheck // already wrapped by the adapter
	}
	return lexcore.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
