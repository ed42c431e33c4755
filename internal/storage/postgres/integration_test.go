//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"job_fetcher/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_jobs.up.sql"),
			filepath.Join(migrationsPath, "002_create_user_preferences.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM user_notified_jobs")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM user_preferences")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM jobs")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func job(id string) domain.JobPosting {
	return domain.JobPosting{
		ID:       "li-" + id,
		Title:    "Go Developer " + id,
		Company:  "Acme",
		Location: "Vancouver",
		URL:      "https://www.linkedin.com/jobs/view/" + id,
		Source:   "linkedin",
	}
}

func (s *PostgresIntegrationSuite) TestPostingStore_InsertAndExisting() {
	store := NewPostingStore(s.db)
	posted := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	full := job("1")
	full.DatePosted = &posted
	full.Description = domain.Ptr("Build ingestion pipelines")
	full.SalaryMin = domain.Ptr(80000.0)
	full.SalaryMax = domain.Ptr(120000.0)
	full.IsRemote = domain.Ptr(false)
	full.JobType = domain.Ptr("Full-time")

	err := store.InsertBatch(s.ctx, []domain.JobPosting{full, job("2")})
	s.NoError(err)

	urls, err := store.ExistingURLs(s.ctx, "linkedin")
	s.NoError(err)
	s.Len(urls, 2)
	s.Contains(urls, full.URL)

	other, err := store.ExistingURLs(s.ctx, "indeed")
	s.NoError(err)
	s.Empty(other)

	var stored domain.JobPosting
	err = s.db.GetContext(s.ctx, &stored, `
		SELECT id, title, company, location, url, source, date_posted, description,
			is_remote, easy_apply, salary_min, salary_max, job_type, job_level,
			industry, job_function, direct_apply_url
		FROM jobs WHERE id = $1`, full.ID)
	s.NoError(err)
	s.Equal("Build ingestion pipelines", domain.StringValue(stored.Description))
	s.Equal(120000.0, *stored.SalaryMax)
	s.True(posted.Equal(*stored.DatePosted))
	s.Nil(stored.EasyApply)
}

func (s *PostgresIntegrationSuite) TestPostingStore_InsertBatchIgnoresKnownURL() {
	store := NewPostingStore(s.db)

	s.NoError(store.InsertBatch(s.ctx, []domain.JobPosting{job("1")}))

	repost := job("1")
	repost.ID = "li-1-repost"
	s.NoError(store.InsertBatch(s.ctx, []domain.JobPosting{repost, job("2")}))

	var count int
	err := s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM jobs")
	s.NoError(err)
	s.Equal(2, count)
}

func (s *PostgresIntegrationSuite) TestProfileStore_ActiveProfiles() {
	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO user_preferences (user_id, email, keywords, location, is_remote, filter_keywords, notifications_enabled, created_at)
		VALUES
			('user-1', 'a@example.com', 'golang', 'Vancouver', true, 'kafka', true, NOW() - INTERVAL '2 days'),
			('user-2', 'b@example.com', 'rust', '', NULL, NULL, true, NOW() - INTERVAL '1 day'),
			('user-3', 'c@example.com', 'java', '', NULL, NULL, false, NOW())`)
	s.Require().NoError(err)

	profiles, err := NewProfileStore(s.db).ActiveProfiles(s.ctx)
	s.NoError(err)
	s.Require().Len(profiles, 2)
	s.Equal("user-1", profiles[0].OwnerID)
	s.Equal("kafka", domain.StringValue(profiles[0].PostFilterKeywords))
	s.Equal("user-2", profiles[1].OwnerID)
	s.Nil(profiles[1].RemoteOnly)
}

func (s *PostgresIntegrationSuite) TestNotificationStore_InsertBatchIsIdempotent() {
	s.Require().NoError(NewPostingStore(s.db).InsertBatch(s.ctx, []domain.JobPosting{job("1")}))
	store := NewNotificationStore(s.db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	records := []domain.NotificationRecord{{OwnerID: "user-1", JobID: "li-1", NotifiedAt: now}}
	s.NoError(store.InsertBatch(s.ctx, records))
	s.NoError(store.InsertBatch(s.ctx, records))

	var count int
	err := s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM user_notified_jobs WHERE user_id = $1", "user-1")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestNotificationStore_UnknownJobFails() {
	err := NewNotificationStore(s.db).InsertBatch(s.ctx, []domain.NotificationRecord{
		{OwnerID: "user-1", JobID: "li-missing", NotifiedAt: time.Now()},
	})
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	postings := NewPostingStore(s.db)
	notifications := NewNotificationStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := postings.InsertBatch(ctx, []domain.JobPosting{job("9")}); err != nil {
			return err
		}
		return notifications.InsertBatch(ctx, []domain.NotificationRecord{
			{OwnerID: "user-1", JobID: "li-9", NotifiedAt: time.Now()},
		})
	})
	s.NoError(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM user_notified_jobs WHERE job_id = $1", "li-9")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	postings := NewPostingStore(s.db)

	s.Require().NoError(postings.InsertBatch(s.ctx, []domain.JobPosting{job("8")}))

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := postings.InsertBatch(ctx, []domain.JobPosting{job("7")}); err != nil {
			return err
		}
		return errors.New("notification insert failed")
	})
	s.Error(err)

	urls, err := postings.ExistingURLs(s.ctx, "linkedin")
	s.NoError(err)
	s.Len(urls, 1)
	s.Contains(urls, job("8").URL)
}
