package domain

import "time"

// SearchProfile is a saved search with notification preferences.
type SearchProfile struct {
	OwnerID              string    `db:"user_id"`
	Email                string    `db:"email"`
	Keywords             string    `db:"keywords"`
	Location             string    `db:"location"`
	RemoteOnly           *bool     `db:"is_remote"`
	PostFilterKeywords   *string   `db:"filter_keywords"` // comma-separated
	NotificationsEnabled bool      `db:"notifications_enabled"`
	CreatedAt            time.Time `db:"created_at"`
}

// NotificationRecord marks a posting as pending delivery to an owner.
// (OwnerID, JobID) is unique.
type NotificationRecord struct {
	OwnerID    string    `json:"ownerId" db:"user_id"`
	JobID      string    `json:"jobId" db:"job_id"`
	NotifiedAt time.Time `json:"notifiedAt" db:"notified_at"`
}
