package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	query, args, err := sqlBuilder.
		Select("id", "participant", "created_at", "last_seen_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.SessionRecord
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.Participant, &rec.CreatedAt, &rec.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}

	subs, err := r.submissions(ctx, id)
	if err != nil {
		log.Error("failed to load session submissions: %v", err)
		return nil, err
	}
	rec.Submissions = subs
	return &rec, nil
}

func (r *sessionRepository) submissions(ctx context.Context, sessionID string) ([]models.Submission, error) {
	query, args, err := sqlBuilder.
		Select("submission_id", "challenge_id", "challenge_title", "status", "score", "submitted_at").
		From("session_submissions").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		var (
			s           models.Submission
			submittedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.ChallengeID, &s.ChallengeTitle, &s.Status, &s.Score, &submittedAt); err != nil {
			return nil, err
		}
		if submittedAt.Valid {
			s.SubmittedAt = models.Timestamp{Time: submittedAt.Time}
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Save upserts the session row and replaces its submission list.
func (r *sessionRepository) Save(ctx context.Context, rec models.SessionRecord) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("saving session: id=%s submissions=%d", rec.ID, len(rec.Submissions))

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	seen := rec.LastSeenAt
	if seen.IsZero() {
		seen = created
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		upsert, args, err := sqlBuilder.
			Insert("sessions").
			Columns("id", "participant", "created_at", "last_seen_at").
			Values(rec.ID, rec.Participant, created.UTC(), seen.UTC()).
			Suffix("ON CONFLICT(id) DO UPDATE SET participant = excluded.participant, last_seen_at = excluded.last_seen_at").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsert, args...); err != nil {
			log.Error("failed to upsert session %s: %v", rec.ID, err)
			return err
		}

		del, args, err := sqlBuilder.Delete("session_submissions").Where(squirrel.Eq{"session_id": rec.ID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, del, args...); err != nil {
			log.Error("failed to clear submissions for session %s: %v", rec.ID, err)
			return err
		}

		if len(rec.Submissions) == 0 {
			return nil
		}

		insert := sqlBuilder.
			Insert("session_submissions").
			Columns("session_id", "position", "submission_id", "challenge_id", "challenge_title", "status", "score", "submitted_at")
		for i, s := range rec.Submissions {
			var submittedAt any
			if !s.SubmittedAt.IsZero() {
				submittedAt = s.SubmittedAt.UTC()
			}
			insert = insert.Values(rec.ID, i, s.ID, s.ChallengeID, s.ChallengeTitle, s.Status, s.Score, submittedAt)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to insert submissions for session %s: %v", rec.ID, err)
			return err
		}
		return nil
	})
}

func (r *sessionRepository) Touch(ctx context.Context, id string, t time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := sqlBuilder.
		Update("sessions").
		Set("last_seen_at", t.UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to touch session %s: %v", id, err)
		return err
	}
	return nil
}

// DeleteIdleSince removes sessions last seen before cutoff together with their submissions.
func (r *sessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("deleting sessions idle since %s", cutoff.Format(time.RFC3339))

	var deleted int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		idle := sqlBuilder.Select("id").From("sessions").Where(squirrel.Lt{"last_seen_at": cutoff.UTC()})

		subQuery, subArgs, err := idle.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_submissions WHERE session_id IN (`+subQuery+`)`, subArgs...); err != nil {
			log.Error("failed to delete idle session submissions: %v", err)
			return err
		}

		query, args, err := sqlBuilder.Delete("sessions").Where(squirrel.Lt{"last_seen_at": cutoff.UTC()}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to delete idle sessions: %v", err)
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d idle sessions", deleted)
	return deleted, nil
}

func (r *sessionRepository) Count(ctx context.Context) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("sessions").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
