package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/codearena/internal/session"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueLeaderboardRefresh(st *session.State) error {
	args := m.Called(st)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueSessionSweep() error {
	args := m.Called()
	return args.Error(0)
}
