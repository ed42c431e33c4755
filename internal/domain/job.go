package domain

import "time"

// JobPosting is a normalized listing. URL is the canonical dedup key; two
// postings with the same URL are the same posting regardless of ID.
type JobPosting struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Company        string     `json:"company" db:"company"`
	Location       string     `json:"location" db:"location"`
	URL            string     `json:"url" db:"url"`
	Source         string     `json:"source" db:"source"` // e.g. "linkedin"
	DatePosted     *time.Time `json:"datePosted,omitempty" db:"date_posted"`
	Description    *string    `json:"description,omitempty" db:"description"`
	IsRemote       *bool      `json:"isRemote,omitempty" db:"is_remote"`
	EasyApply      *bool      `json:"easyApply,omitempty" db:"easy_apply"`
	SalaryMin      *float64   `json:"salaryMin,omitempty" db:"salary_min"`
	SalaryMax      *float64   `json:"salaryMax,omitempty" db:"salary_max"`
	JobType        *string    `json:"jobType,omitempty" db:"job_type"`
	JobLevel       *string    `json:"jobLevel,omitempty" db:"job_level"`
	Industry       *string    `json:"industry,omitempty" db:"industry"`
	JobFunction    *string    `json:"jobFunction,omitempty" db:"job_function"`
	DirectApplyURL *string    `json:"directApplyUrl,omitempty" db:"direct_apply_url"`
}

// SearchQuery is the input of a search. RecencyWindow is the canonical
// recency bound; sources convert it to their own unit.
type SearchQuery struct {
	Keywords      string
	Location      string
	RecencyWindow time.Duration
	RemoteOnly    *bool
	EasyApplyOnly *bool
	ResultsWanted int // advisory cap, 0 means no cap
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// StringValue returns the pointed-to string or "".
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
