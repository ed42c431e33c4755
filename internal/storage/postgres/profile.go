package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"job_fetcher/internal/domain"
)

type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// ActiveProfiles returns profiles with notifications enabled, oldest first.
func (s *ProfileStore) ActiveProfiles(ctx context.Context) ([]domain.SearchProfile, error) {
	query := `
		SELECT user_id, email, keywords, location, is_remote, filter_keywords,
			notifications_enabled, created_at
		FROM user_preferences
		WHERE notifications_enabled = true
		ORDER BY created_at, user_id`

	var profiles []domain.SearchProfile
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &profiles, query)
	return profiles, err
}
