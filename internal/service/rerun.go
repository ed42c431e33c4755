package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"job_fetcher/internal/domain"
	"job_fetcher/internal/keywords"
)

// RerunService re-executes every active profile's search, stores postings
// not seen before and records one pending notification per new posting.
type RerunService struct {
	searcher      Searcher
	postings      PostingStore
	notifications NotificationStore
	profiles      ProfileStore
	txManager     TransactionManager
	publisher     Publisher
	recency       time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

func NewRerunService(
	searcher Searcher,
	postings PostingStore,
	notifications NotificationStore,
	profiles ProfileStore,
	txManager TransactionManager,
	publisher Publisher,
	recency time.Duration,
	logger *slog.Logger,
) *RerunService {
	return &RerunService{
		searcher:      searcher,
		postings:      postings,
		notifications: notifications,
		profiles:      profiles,
		txManager:     txManager,
		publisher:     publisher,
		recency:       recency,
		logger:        logger.With("component", "rerun"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce processes all active profiles sequentially. A failing profile is
// logged and counted; only failing to load profiles fails the run.
func (s *RerunService) RunOnce(ctx context.Context) (*domain.RunStats, error) {
	startTime := time.Now()

	profiles, err := s.profiles.ActiveProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active profiles: %w", err)
	}

	s.logger.Info("starting rerun", "profiles", len(profiles))

	stats := &domain.RunStats{Profiles: len(profiles)}

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("rerun interrupted: %w", err)
		}

		profileStats, err := s.runProfile(ctx, profile)
		if err != nil {
			stats.FailedProfiles++
			s.logger.Error("profile rerun failed", "owner_id", profile.OwnerID, "error", err)
			continue
		}
		stats.Add(profileStats)
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("rerun completed",
		"profiles", stats.Profiles,
		"failed", stats.FailedProfiles,
		"fetched", stats.Fetched,
		"filtered", stats.Filtered,
		"new", stats.New,
		"skipped", stats.Skipped,
		"notifications", stats.Notifications,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *RerunService) runProfile(ctx context.Context, profile domain.SearchProfile) (*domain.ProfileStats, error) {
	logger := s.logger.With("owner_id", profile.OwnerID)
	stats := &domain.ProfileStats{OwnerID: profile.OwnerID}

	found := s.searcher.Search(ctx, QueryForProfile(profile, s.recency))
	stats.Fetched = len(found)
	if len(found) == 0 {
		logger.Info("no postings found", "keywords", profile.Keywords, "location", profile.Location)
		return stats, nil
	}

	matched := applyPostFilter(found, profile.PostFilterKeywords)
	stats.Filtered = len(found) - len(matched)

	fresh, err := s.filterNew(ctx, matched)
	if err != nil {
		return nil, fmt.Errorf("filter new postings: %w", err)
	}
	stats.Skipped = len(matched) - len(fresh)

	if len(fresh) == 0 {
		logger.Info("no new postings", "fetched", stats.Fetched)
		return stats, nil
	}

	notifiedAt := s.now()
	records := make([]domain.NotificationRecord, len(fresh))
	for i, p := range fresh {
		records[i] = domain.NotificationRecord{
			OwnerID:    profile.OwnerID,
			JobID:      p.ID,
			NotifiedAt: notifiedAt,
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postings.InsertBatch(txCtx, fresh); err != nil {
			return fmt.Errorf("insert postings: %w", err)
		}
		if err := s.notifications.InsertBatch(txCtx, records); err != nil {
			return fmt.Errorf("insert notification records: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.New = len(fresh)
	stats.Notifications = len(records)

	if s.publisher != nil {
		for i := range records {
			if err := s.publisher.PublishNotification(ctx, records[i], &fresh[i]); err != nil {
				stats.PublishErrors++
				logger.Warn("publish notification failed", "job_id", records[i].JobID, "error", err)
				continue
			}
			stats.Published++
		}
	}

	logger.Info("profile rerun completed",
		"fetched", stats.Fetched,
		"filtered", stats.Filtered,
		"new", stats.New,
		"skipped", stats.Skipped,
	)

	return stats, nil
}

// filterNew drops postings without a URL, postings whose URL is already
// stored for their source and repeats within the batch.
func (s *RerunService) filterNew(ctx context.Context, postings []domain.JobPosting) ([]domain.JobPosting, error) {
	existing := make(map[string]map[string]struct{})
	seen := make(map[string]struct{}, len(postings))

	var fresh []domain.JobPosting
	for _, p := range postings {
		if p.URL == "" {
			continue
		}
		if _, dup := seen[p.URL]; dup {
			continue
		}

		urls, ok := existing[p.Source]
		if !ok {
			var err error
			urls, err = s.postings.ExistingURLs(ctx, p.Source)
			if err != nil {
				return nil, fmt.Errorf("existing urls for %s: %w", p.Source, err)
			}
			existing[p.Source] = urls
		}
		if _, stored := urls[p.URL]; stored {
			continue
		}

		seen[p.URL] = struct{}{}
		fresh = append(fresh, p)
	}

	return fresh, nil
}

// QueryForProfile builds the search a profile subscribes to.
func QueryForProfile(profile domain.SearchProfile, recency time.Duration) domain.SearchQuery {
	return domain.SearchQuery{
		Keywords:      profile.Keywords,
		Location:      profile.Location,
		RemoteOnly:    profile.RemoteOnly,
		RecencyWindow: recency,
	}
}

// applyPostFilter keeps postings mentioning at least one of the profile's
// comma-separated post-filter keywords. No keywords keeps everything.
func applyPostFilter(postings []domain.JobPosting, csv *string) []domain.JobPosting {
	if csv == nil {
		return postings
	}
	return filterPostings(postings, keywords.ParseList(*csv))
}
