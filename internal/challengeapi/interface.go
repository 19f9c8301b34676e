package challengeapi

import (
	"context"

	"github.com/vytor/codearena/internal/models"
)

// ClientInterface defines the challenge API operations the portal uses.
// This interface enables testability by allowing mock implementations.
type ClientInterface interface {
	Health(ctx context.Context) (*models.Health, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionReceipt, error)
	GetSubmission(ctx context.Context, id string) (*models.SubmissionDetail, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	JSONPlaceholder(ctx context.Context) (*models.ProxyResult, error)
	HTTPBin(ctx context.Context) (*models.ProxyResult, error)
	Weather(ctx context.Context, city string) (*models.ProxyResult, error)
	Custom(ctx context.Context, req models.CustomRequest) (*models.ProxyResult, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
