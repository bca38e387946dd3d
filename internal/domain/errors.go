package domain

import "errors"

// KeyPrefix namespaces every key lexcore writes to the key-value store.
const KeyPrefix = "lexcore:"

var (
	// ErrInvalidInput signals a caller-side request shape error (e.g. missing category).
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals that the embedding token budget is exhausted.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token budget exceeded")
	// ErrEmbeddingDisabled signals that no embedding provider is configured.
	ErrEmbeddingDisabled = errors.New("embedding provider not configured")
)
