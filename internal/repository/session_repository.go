package repository

import (
	"context"
	"time"

	"github.com/vytor/codearena/internal/models"
)

// SessionRepository persists the participant name and submission history of
// portal sessions. Get returns (nil, nil) for an unknown id.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.SessionRecord, error)
	Save(ctx context.Context, rec models.SessionRecord) error
	Touch(ctx context.Context, id string, t time.Time) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}
