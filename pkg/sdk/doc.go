// Package lexcore embeds the legal-reference retrieval engine and the rule
// engine in a Go application without running the HTTP server.
//
// The corpus and the rule configuration are loaded once by New; the client
// is then immutable and safe for concurrent use.
//
//	client, err := lexcore.New(ctx,
//	    lexcore.WithCorpusFile("data/mevzuat.txt"),
//	    lexcore.WithRulesFile("data/rules.json"),
//	)
//	if err != nil { ... }
//	summary := client.BestMatchSummary(ctx, "kiracı evden çıkmıyor tahliye", "kira")
//	eval := client.Evaluate("trafik_cezasi", userText, ocrText)
//
// Without WithEmbedder, retrieval uses term-frequency cosine similarity.
// With an embedder, documents are vectorized at load and each search falls
// back to term frequency when the provider fails.
package lexcore
