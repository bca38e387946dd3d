package lexcore

import "github.com/hukukai/lexcore/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
