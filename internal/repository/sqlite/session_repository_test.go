package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/repository"
	"github.com/vytor/codearena/internal/repository/sqlite"
	"github.com/vytor/codearena/internal/testutil"
)

type SessionRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionRepositorySuite) TestGet_NotFound() {
	rec, err := s.repo.Get(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(rec)
}

func (s *SessionRepositorySuite) TestSaveAndGet() {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := models.SessionRecord{
		ID:          "sess-1",
		Participant: "Alice",
		CreatedAt:   now,
		LastSeenAt:  now,
		Submissions: []models.Submission{
			{ID: "s2", ChallengeID: 2, ChallengeTitle: "Valid Parentheses", Status: models.StatusAccepted, Score: 200, SubmittedAt: models.Timestamp{Time: now}},
			{ID: "s1", ChallengeID: 1, ChallengeTitle: "Two Sum", Status: models.StatusRejected},
		},
	}
	s.Require().NoError(s.repo.Save(ctx, rec))

	got, err := s.repo.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("Alice", got.Participant)
	s.Require().Len(got.Submissions, 2)
	s.Assert().Equal("s2", got.Submissions[0].ID)
	s.Assert().Equal(200, got.Submissions[0].Score)
	s.Assert().True(now.Equal(got.Submissions[0].SubmittedAt.Time))
	s.Assert().Equal("s1", got.Submissions[1].ID)
	s.Assert().True(got.Submissions[1].SubmittedAt.IsZero())
}

func (s *SessionRepositorySuite) TestSave_ReplacesSubmissions() {
	ctx := context.Background()
	rec := models.SessionRecord{
		ID:          "sess-1",
		Participant: "Alice",
		Submissions: []models.Submission{{ID: "s1", ChallengeID: 1}},
	}
	s.Require().NoError(s.repo.Save(ctx, rec))

	rec.Participant = "Bob"
	rec.Submissions = nil
	s.Require().NoError(s.repo.Save(ctx, rec))

	got, err := s.repo.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.Assert().Equal("Bob", got.Participant)
	s.Assert().Empty(got.Submissions)

	n, err := s.repo.Count(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)
}

func (s *SessionRepositorySuite) TestDeleteIdleSince() {
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	s.Require().NoError(s.repo.Save(ctx, models.SessionRecord{
		ID: "old", Participant: "Old", CreatedAt: old, LastSeenAt: old,
		Submissions: []models.Submission{{ID: "s1", ChallengeID: 1}},
	}))
	s.Require().NoError(s.repo.Save(ctx, models.SessionRecord{
		ID: "fresh", Participant: "Fresh", CreatedAt: fresh, LastSeenAt: fresh,
	}))

	deleted, err := s.repo.DeleteIdleSince(ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), deleted)

	gone, err := s.repo.Get(ctx, "old")
	s.Require().NoError(err)
	s.Assert().Nil(gone)

	var orphans int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_submissions`).Scan(&orphans))
	s.Assert().Zero(orphans)

	kept, err := s.repo.Get(ctx, "fresh")
	s.Require().NoError(err)
	s.Assert().NotNil(kept)
}

func (s *SessionRepositorySuite) TestTouch() {
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	s.Require().NoError(s.repo.Save(ctx, models.SessionRecord{ID: "sess", Participant: "A", CreatedAt: old, LastSeenAt: old}))

	s.Require().NoError(s.repo.Touch(ctx, "sess", time.Now()))

	deleted, err := s.repo.DeleteIdleSince(ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Assert().Zero(deleted)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
