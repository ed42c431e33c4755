package domain

import "time"

// RunStats holds statistics about one re-run over all active profiles.
type RunStats struct {
	Profiles       int           `json:"profiles"`
	FailedProfiles int           `json:"failedProfiles"`
	Fetched        int           `json:"fetched"`
	Filtered       int           `json:"filtered"`
	New            int           `json:"new"`
	Skipped        int           `json:"skipped"`
	Notifications  int           `json:"notifications"`
	Published      int           `json:"published"`
	PublishErrors  int           `json:"publishErrors"`
	Duration       time.Duration `json:"duration"`
}

// ProfileStats holds statistics about the re-run of a single profile.
type ProfileStats struct {
	OwnerID       string
	Fetched       int
	Filtered      int
	New           int
	Skipped       int
	Notifications int
	Published     int
	PublishErrors int
}

// Add folds a profile result into the run totals.
func (s *RunStats) Add(p *ProfileStats) {
	s.Fetched += p.Fetched
	s.Filtered += p.Filtered
	s.New += p.New
	s.Skipped += p.Skipped
	s.Notifications += p.Notifications
	s.Published += p.Published
	s.PublishErrors += p.PublishErrors
}
