package models

import (
	"time"

	"github.com/lib/pq"
)

// ShareType scopes who may consume a share link.
type ShareType string

const (
	SharePublic     ShareType = "PUBLIC"
	ShareRestricted ShareType = "RESTRICTED"
)

// SharedCalendar grants time-limited, read-only access to the agenda through
// an opaque token. Records are created and listed, never mutated.
type SharedCalendar struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	ShareType   ShareType      `db:"share_type" json:"share_type"`
	ShareToken  string         `db:"share_token" json:"share_token"`
	SharedWith  pq.StringArray `db:"shared_with" json:"shared_with"`
	ExpiresAt   *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Expired reports whether the share link is past its expiry instant.
func (s *SharedCalendar) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
