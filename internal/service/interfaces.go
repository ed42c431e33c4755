package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"job_fetcher/internal/domain"
)

// Source is one external job site. Scrape performs fresh fetches on every
// call; transient unavailability is an empty result, not an error.
type Source interface {
	ID() string
	Name() string
	Scrape(ctx context.Context, query domain.SearchQuery) ([]domain.JobPosting, error)
}

type PostingStore interface {
	ExistingURLs(ctx context.Context, source string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, postings []domain.JobPosting) error
}

type NotificationStore interface {
	InsertBatch(ctx context.Context, records []domain.NotificationRecord) error
}

type ProfileStore interface {
	ActiveProfiles(ctx context.Context) ([]domain.SearchProfile, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishNotification(ctx context.Context, record domain.NotificationRecord, posting *domain.JobPosting) error
	Close() error
}

// Searcher is the aggregated search entry point.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery) []domain.JobPosting
}
