// Package linkedin scrapes the LinkedIn guest job search pages.
package linkedin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"job_fetcher/internal/domain"
)

const (
	SourceID   = "linkedin"
	SourceName = "LinkedIn"

	searchPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	signupPath = "/signup"
)

// Config holds LinkedIn source configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	DetailDelay    time.Duration
	FetchDetails   bool
	MinBodyLength  int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	DefaultRecency time.Duration
}

// Source implements service.Source for LinkedIn.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	fetchDetails   bool
	minBodyLength  int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	defaultRecency time.Duration
	detailLimiter  *rate.Limiter
	logger         *slog.Logger
}

// New creates a new LinkedIn source.
func New(cfg Config, logger *slog.Logger) *Source {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithClient creates a LinkedIn source that issues requests through client.
func NewWithClient(cfg Config, client *http.Client, logger *slog.Logger) *Source {
	limit := rate.Inf
	if cfg.DetailDelay > 0 {
		limit = rate.Every(cfg.DetailDelay)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.DefaultRecency <= 0 {
		cfg.DefaultRecency = 30 * time.Minute
	}

	return &Source{
		httpClient:     client,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		fetchDetails:   cfg.FetchDetails,
		minBodyLength:  cfg.MinBodyLength,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		defaultRecency: cfg.DefaultRecency,
		detailLimiter:  rate.NewLimiter(limit, 1),
		logger:         logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// Scrape fetches the listing page for query, parses its job cards and then
// enriches each posting from its own page, one request at a time.
// Blocked, rate-limited or failed fetches yield no postings and no error.
func (s *Source) Scrape(ctx context.Context, query domain.SearchQuery) ([]domain.JobPosting, error) {
	body, ok := s.fetchListing(ctx, s.buildSearchURL(query))
	if !ok {
		return nil, nil
	}

	postings := parseListing(body, s.baseURL, s.logger)
	if query.ResultsWanted > 0 && len(postings) > query.ResultsWanted {
		postings = postings[:query.ResultsWanted]
	}

	s.logger.Debug("parsed listing", "cards", len(postings))

	if s.fetchDetails {
		for i := range postings {
			if err := s.detailLimiter.Wait(ctx); err != nil {
				s.logger.Debug("detail stage interrupted", "remaining", len(postings)-i, "error", err)
				break
			}
			s.fetchDetail(ctx, &postings[i])
		}
	}

	for i := range postings {
		postings[i].IsRemote = domain.Ptr(resolveRemote(query.RemoteOnly, &postings[i]))
	}

	return postings, nil
}

// fetchListing returns the listing body, or false when the page should be
// treated as empty.
func (s *Source) fetchListing(ctx context.Context, url string) ([]byte, bool) {
	var (
		resp *http.Response
		body []byte
		err  error
	)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, body, err = s.get(ctx, url)
		if err == nil {
			break
		}
		if attempt == s.maxAttempts || ctx.Err() != nil {
			s.logger.Warn("listing fetch failed", "attempts", attempt, "error", err)
			return nil, false
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(backoff):
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		s.logger.Warn("rate limited by source")
		return nil, false
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		s.logger.Warn("unexpected status", "status", resp.StatusCode)
		return nil, false
	case len(body) < s.minBodyLength:
		s.logger.Info("listing body too short, treating as empty", "length", len(body))
		return nil, false
	}

	return body, true
}

func (s *Source) get(ctx context.Context, url string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	applyHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return resp, body, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if s.maxBackoff > 0 && backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}
