package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"job_fetcher/internal/domain"
	"job_fetcher/internal/service/mocks"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type SearchServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	alpha *mocks.MockSource
	beta  *mocks.MockSource
	gamma *mocks.MockSource

	service *SearchService
}

func (s *SearchServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.alpha = mocks.NewMockSource(s.ctrl)
	s.beta = mocks.NewMockSource(s.ctrl)
	s.gamma = mocks.NewMockSource(s.ctrl)

	s.alpha.EXPECT().ID().Return("alpha").AnyTimes()
	s.beta.EXPECT().ID().Return("beta").AnyTimes()
	s.gamma.EXPECT().ID().Return("gamma").AnyTimes()

	s.service = NewSearchService([]Source{s.alpha, s.beta, s.gamma}, time.Second, discardLogger)
}

func (s *SearchServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSearchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceTestSuite))
}

func posting(id, title string) domain.JobPosting {
	return domain.JobPosting{
		ID:     id,
		Title:  title,
		URL:    "https://jobs.example.com/" + id,
		Source: "alpha",
	}
}

func ids(postings []domain.JobPosting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func (s *SearchServiceTestSuite) TestSearch_IsolatesFailingSource() {
	query := domain.SearchQuery{Location: "Vancouver"}

	s.alpha.EXPECT().Scrape(gomock.Any(), query).Return([]domain.JobPosting{posting("a1", "Chef"), posting("a2", "Baker")}, nil)
	s.beta.EXPECT().Scrape(gomock.Any(), query).Return(nil, errors.New("connection reset"))
	s.gamma.EXPECT().Scrape(gomock.Any(), query).Return([]domain.JobPosting{posting("g1", "Driver")}, nil)

	got := s.service.Search(context.Background(), query)

	s.Equal([]string{"a1", "a2", "g1"}, ids(got))
}

func (s *SearchServiceTestSuite) TestSearch_EmptyKeywordsKeepsEverything() {
	all := []domain.JobPosting{posting("a1", "Accountant"), posting("a2", "Nurse")}

	s.alpha.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return(all, nil)
	s.beta.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.gamma.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return(nil, nil)

	got := s.service.Search(context.Background(), domain.SearchQuery{})

	s.Equal([]string{"a1", "a2"}, ids(got))
}

func (s *SearchServiceTestSuite) TestSearch_FiltersByKeywordGroup() {
	pythonJob := posting("b1", "Backend Engineer")
	pythonJob.Description = domain.Ptr("Django and FastAPI services")

	s.alpha.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return([]domain.JobPosting{
		posting("a1", "Senior Python Developer"),
		posting("a2", "Accountant"),
	}, nil)
	s.beta.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return([]domain.JobPosting{pythonJob}, nil)
	s.gamma.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return([]domain.JobPosting{posting("g1", "Warehouse Lead")}, nil)

	got := s.service.Search(context.Background(), domain.SearchQuery{Keywords: "python developer"})

	s.Equal([]string{"a1", "b1"}, ids(got))
}

func (s *SearchServiceTestSuite) TestSearch_RecoversFromPanickingSource() {
	s.alpha.EXPECT().Scrape(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.SearchQuery) ([]domain.JobPosting, error) {
			panic("nil map write")
		},
	)
	s.beta.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return([]domain.JobPosting{posting("b1", "Chef")}, nil)
	s.gamma.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return(nil, nil)

	got := s.service.Search(context.Background(), domain.SearchQuery{})

	s.Equal([]string{"b1"}, ids(got))
}

func (s *SearchServiceTestSuite) TestSearch_TimedOutSourceContributesNothing() {
	s.service = NewSearchService([]Source{s.alpha, s.beta}, 20*time.Millisecond, discardLogger)

	s.alpha.EXPECT().Scrape(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.SearchQuery) ([]domain.JobPosting, error) {
			<-ctx.Done()
			return []domain.JobPosting{posting("late", "Too Late")}, nil
		},
	)
	s.beta.EXPECT().Scrape(gomock.Any(), gomock.Any()).Return([]domain.JobPosting{posting("b1", "On Time")}, nil)

	got := s.service.Search(context.Background(), domain.SearchQuery{})

	s.Equal([]string{"b1"}, ids(got))
}

func (s *SearchServiceTestSuite) TestSearch_NoSources() {
	service := NewSearchService(nil, time.Second, discardLogger)

	s.Empty(service.Search(context.Background(), domain.SearchQuery{Keywords: "go"}))
}
