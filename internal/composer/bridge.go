package composer

import (
	"context"

	"github.com/starford/promptloom/internal/models"
)

// Bridge carries a save request to the combination store and reports the
// stored record or the failure unchanged. Both the in-process prompt service
// and the HTTP API client satisfy it.
type Bridge interface {
	CreateCombination(ctx context.Context, in models.CombinationInput) (*models.Combination, error)
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(ctx context.Context, in models.CombinationInput) (*models.Combination, error)

// CreateCombination calls f.
func (f BridgeFunc) CreateCombination(ctx context.Context, in models.CombinationInput) (*models.Combination, error) {
	return f(ctx, in)
}
