package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"job_fetcher/internal/domain"
)

type NotificationStore struct {
	db *sqlx.DB
}

func NewNotificationStore(db *sqlx.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// InsertBatch records pending notifications. Records already present for an
// (owner, job) pair are left untouched.
func (s *NotificationStore) InsertBatch(ctx context.Context, records []domain.NotificationRecord) error {
	return insertChunked(ctx, GetExecutor(ctx, s.db),
		"INSERT INTO user_notified_jobs (user_id, job_id, notified_at) VALUES ",
		" ON CONFLICT (user_id, job_id) DO NOTHING",
		3, len(records), func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.OwnerID, r.JobID, r.NotifiedAt}
		})
}
