package linkedin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"job_fetcher/internal/domain"
)

const (
	descriptionSelector   = "div.show-more-less-html__markup"
	criteriaHeaderSel     = "h3.description__job-criteria-subheader"
	criteriaValueSelector = "span.description__job-criteria-text"
	applyURLSelector      = "code#applyUrl"
)

var (
	errSignupGate = errors.New("redirected to sign-up page")

	remoteKeywords = []string{"remote", "work from home", "wfh"}
	applyURLParam  = regexp.MustCompile(`\?url=([^"&]+)`)
)

// fetchDetail enriches posting from its own page. Any failure leaves the
// fields populated from the listing card untouched.
func (s *Source) fetchDetail(ctx context.Context, posting *domain.JobPosting) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("detail parse panicked", "job_id", posting.ID, "panic", r)
		}
	}()

	if err := s.loadDetail(ctx, posting); err != nil {
		s.logger.Debug("detail fetch skipped", "job_id", posting.ID, "error", err)
	}
}

func (s *Source) loadDetail(ctx context.Context, posting *domain.JobPosting) error {
	resp, body, err := s.get(ctx, posting.URL)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if resp.Request != nil && strings.Contains(resp.Request.URL.Path, signupPath) {
		return errSignupGate
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse detail html: %w", err)
	}

	applyDetail(doc, posting)
	return nil
}

// applyDetail copies what the detail page offers onto posting.
func applyDetail(doc *goquery.Document, posting *domain.JobPosting) {
	if desc := text(doc.Find(descriptionSelector).First()); desc != "" {
		posting.Description = &desc
	}

	posting.JobType = criteria(doc, "Employment type")
	posting.JobLevel = criteria(doc, "Seniority level")
	posting.Industry = criteria(doc, "Industries")
	posting.JobFunction = criteria(doc, "Job function")

	// An external apply URL means the posting is not Easy Apply.
	posting.EasyApply = domain.Ptr(true)
	if apply := doc.Find(applyURLSelector).First(); apply.Length() > 0 {
		if direct := directApplyURL(apply); direct != "" {
			posting.DirectApplyURL = &direct
			posting.EasyApply = domain.Ptr(false)
		}
	}
}

// criteria returns the value next to the criteria header containing name.
func criteria(doc *goquery.Document, name string) *string {
	var value *string
	doc.Find(criteriaHeaderSel).EachWithBreak(func(_ int, header *goquery.Selection) bool {
		if !strings.Contains(header.Text(), name) {
			return true
		}
		if v := text(header.NextAllFiltered(criteriaValueSelector).First()); v != "" {
			value = &v
		}
		return false
	})
	return value
}

// directApplyURL decodes the url parameter of the hidden apply link. The
// link is usually wrapped in an HTML comment, so raw markup is searched.
func directApplyURL(apply *goquery.Selection) string {
	raw, err := apply.Html()
	if err != nil {
		raw = apply.Text()
	}

	match := applyURLParam.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}

	decoded, err := url.QueryUnescape(match[1])
	if err != nil {
		return ""
	}
	return decoded
}

// resolveRemote trusts an explicit remote-only request, otherwise looks for
// remote keywords in the posting text.
func resolveRemote(requested *bool, posting *domain.JobPosting) bool {
	if requested != nil && *requested {
		return true
	}

	combined := strings.ToLower(posting.Title + " " + domain.StringValue(posting.Description) + " " + posting.Location)
	for _, keyword := range remoteKeywords {
		if strings.Contains(combined, keyword) {
			return true
		}
	}
	return false
}
