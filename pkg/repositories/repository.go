package repositories

import (
	"context"

	"github.com/rmarques/pointblank/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	SaveMatchResult(ctx context.Context, result *models.MatchResult) error
	GetMatchResult(ctx context.Context, sessionID string) (*models.MatchResult, error)
	ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error)
}
