package linkedin

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"job_fetcher/internal/domain"
)

const (
	cardSelector     = "div.base-search-card"
	linkSelector     = "a.base-card__full-link"
	titleSelector    = "span.sr-only"
	altTitleSelector = "h3.base-search-card__title"
	companySelector  = "h4.base-search-card__subtitle"
	locationSelector = "span.job-search-card__location"
	dateSelector     = "time.job-search-card__listdate, time.job-search-card__listdate--new"
	salarySelector   = "span.job-search-card__salary-info"
)

// parseListing extracts job cards in page order. Cards without an
// identifier, or repeating one already seen on this page, are skipped.
func parseListing(body []byte, baseURL string, logger *slog.Logger) []domain.JobPosting {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("parse listing html", "error", err)
		return nil
	}

	var postings []domain.JobPosting
	seen := make(map[string]struct{})

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		posting, ok := parseCard(card, seen, baseURL, logger)
		if ok {
			postings = append(postings, posting)
		}
	})

	return postings
}

func parseCard(card *goquery.Selection, seen map[string]struct{}, baseURL string, logger *slog.Logger) (posting domain.JobPosting, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("skipping malformed card", "panic", r)
			ok = false
		}
	}()

	href, _ := card.Find(linkSelector).First().Attr("href")
	jobID := extractJobID(href)
	if jobID == "" {
		return domain.JobPosting{}, false
	}
	if _, dup := seen[jobID]; dup {
		return domain.JobPosting{}, false
	}
	seen[jobID] = struct{}{}

	title := text(card.Find(titleSelector).First())
	if title == "" {
		title = text(card.Find(altTitleSelector).First())
	}

	company := text(card.Find(companySelector).Find("a").First())
	if company == "" {
		company = text(card.Find(companySelector).First())
	}

	posting = domain.JobPosting{
		ID:       "li-" + jobID,
		Title:    title,
		Company:  company,
		Location: text(card.Find(locationSelector).First()),
		URL:      baseURL + "/jobs/view/" + jobID,
		Source:   SourceID,
	}

	if datetime, exists := card.Find(dateSelector).First().Attr("datetime"); exists {
		posting.DatePosted = parseDate(datetime)
	}

	if salary := card.Find(salarySelector).First(); salary.Length() > 0 {
		posting.SalaryMin, posting.SalaryMax = parseSalary(text(salary))
	}

	return posting, true
}

// maxJobIDLength bounds the numeric posting id taken from a card link.
const maxJobIDLength = 20

// extractJobID returns the trailing hyphen-delimited token of the link's
// last path segment, e.g. ".../senior-go-developer-3812345678?refId=x" gives
// "3812345678". Tokens that are not a plausible numeric id give "".
func extractJobID(href string) string {
	clean, _, _ := strings.Cut(href, "?")
	clean = strings.TrimRight(clean, "/")
	if clean == "" {
		return ""
	}

	segment := clean[strings.LastIndex(clean, "/")+1:]
	id := strings.TrimSpace(segment[strings.LastIndex(segment, "-")+1:])
	if id == "" || len(id) > maxJobIDLength {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// parseSalary reads "$80,000 - $120,000" style ranges. Text without a dash
// separator gives no salary; an unparsable bound is left unset.
func parseSalary(value string) (low, high *float64) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	parts := strings.Split(dashReplacer.Replace(value), "-")
	if len(parts) < 2 {
		return nil, nil
	}

	return parseAmount(parts[0]), parseAmount(parts[1])
}

func parseAmount(value string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, value)
	if cleaned == "" {
		return nil
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &amount
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
