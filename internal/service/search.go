package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"job_fetcher/internal/domain"
	"job_fetcher/internal/keywords"
)

// SearchService fans a query out to every registered source and merges the
// results. A failing source contributes nothing.
type SearchService struct {
	sources       []Source
	sourceTimeout time.Duration
	logger        *slog.Logger
}

func NewSearchService(sources []Source, sourceTimeout time.Duration, logger *slog.Logger) *SearchService {
	return &SearchService{
		sources:       sources,
		sourceTimeout: sourceTimeout,
		logger:        logger.With("component", "search"),
	}
}

// Search runs all sources concurrently, concatenates their postings in
// registration order and keeps only postings matching the keyword groups
// triggered by query.Keywords.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) []domain.JobPosting {
	results := make([][]domain.JobPosting, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			postings, err := s.scrape(ctx, src, query)
			if err != nil {
				s.logger.Warn("source failed", "source", src.ID(), "error", err)
				return nil
			}
			results[i] = postings
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.JobPosting
	for _, postings := range results {
		merged = append(merged, postings...)
	}

	filterSet := keywords.BuildFilterSet(query.Keywords)
	filtered := filterPostings(merged, filterSet)

	s.logger.Info("search completed",
		"keywords", query.Keywords,
		"location", query.Location,
		"sources", len(s.sources),
		"fetched", len(merged),
		"matched", len(filtered),
	)

	return filtered
}

// scrape runs one source under the per-source timeout and turns a panic
// into an error.
func (s *SearchService) scrape(ctx context.Context, src Source, query domain.SearchQuery) (postings []domain.JobPosting, err error) {
	if s.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sourceTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			postings, err = nil, fmt.Errorf("source panicked: %v", r)
		}
	}()

	postings, err = src.Scrape(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", src.ID(), err)
	}
	// A source that outlives its timeout has failed, even when it returned
	// partial postings without an error.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("scrape %s: %w", src.ID(), ctxErr)
	}
	return postings, nil
}

func filterPostings(postings []domain.JobPosting, set keywords.Set) []domain.JobPosting {
	if len(set) == 0 {
		return postings
	}

	var filtered []domain.JobPosting
	for _, p := range postings {
		if keywords.Matches(set, p.Title, domain.StringValue(p.Description)) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
