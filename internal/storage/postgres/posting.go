package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"job_fetcher/internal/domain"
)

// maxParams is the Postgres bind parameter limit per statement.
var maxParams = 65535

var postingColumns = []string{
	"id", "title", "company", "location", "url", "source", "date_posted",
	"description", "is_remote", "easy_apply", "salary_min", "salary_max",
	"job_type", "job_level", "industry", "job_function", "direct_apply_url",
}

type PostingStore struct {
	db *sqlx.DB
}

func NewPostingStore(db *sqlx.DB) *PostingStore {
	return &PostingStore{db: db}
}

// ExistingURLs returns every stored URL for source.
func (s *PostingStore) ExistingURLs(ctx context.Context, source string) (map[string]struct{}, error) {
	var urls []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &urls,
		"SELECT url FROM jobs WHERE source = $1", source)
	if err != nil {
		return nil, err
	}

	result := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		result[u] = struct{}{}
	}
	return result, nil
}

// InsertBatch inserts postings, ignoring rows whose id or url is already stored.
func (s *PostingStore) InsertBatch(ctx context.Context, postings []domain.JobPosting) error {
	prefix := "INSERT INTO jobs (" + strings.Join(postingColumns, ", ") + ") VALUES "

	return insertChunked(ctx, GetExecutor(ctx, s.db), prefix, " ON CONFLICT DO NOTHING",
		len(postingColumns), len(postings), func(i int) []interface{} {
			p := postings[i]
			return []interface{}{
				p.ID, p.Title, p.Company, p.Location, p.URL, p.Source, p.DatePosted,
				p.Description, p.IsRemote, p.EasyApply, p.SalaryMin, p.SalaryMax,
				p.JobType, p.JobLevel, p.Industry, p.JobFunction, p.DirectApplyURL,
			}
		})
}

// insertChunked runs prefix + VALUES + suffix over rows, splitting into as
// many statements as the bind parameter limit requires.
func insertChunked(ctx context.Context, exec sqlx.ExecerContext, prefix, suffix string, cols, rows int, row func(i int) []interface{}) error {
	chunk := max(maxParams/cols, 1)

	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)

		args := make([]interface{}, 0, (end-start)*cols)
		for i := start; i < end; i++ {
			args = append(args, row(i)...)
		}

		query := prefix + valuesClause(end-start, cols) + suffix
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end, err)
		}
	}

	return nil
}

// valuesClause renders "($1, $2), ($3, $4)" for rows x cols parameters.
func valuesClause(rows, cols int) string {
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(itoa(r*cols + c + 1))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
