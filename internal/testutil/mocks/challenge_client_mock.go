package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codearena/internal/models"
)

// MockChallengeClient is a mock implementation of challengeapi.ClientInterface
type MockChallengeClient struct {
	mock.Mock
}

func (m *MockChallengeClient) Health(ctx context.Context) (*models.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Health), args.Error(1)
}

func (m *MockChallengeClient) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Challenge), args.Error(1)
}

func (m *MockChallengeClient) Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionReceipt), args.Error(1)
}

func (m *MockChallengeClient) GetSubmission(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionDetail), args.Error(1)
}

func (m *MockChallengeClient) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

func (m *MockChallengeClient) JSONPlaceholder(ctx context.Context) (*models.ProxyResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProxyResult), args.Error(1)
}

func (m *MockChallengeClient) HTTPBin(ctx context.Context) (*models.ProxyResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProxyResult), args.Error(1)
}

func (m *MockChallengeClient) Weather(ctx context.Context, city string) (*models.ProxyResult, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProxyResult), args.Error(1)
}

func (m *MockChallengeClient) Custom(ctx context.Context, req models.CustomRequest) (*models.ProxyResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProxyResult), args.Error(1)
}
