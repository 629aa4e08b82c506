package models

import (
	"time"

	"github.com/lib/pq"
)

// EventPriority represents the fixed ordered priority scale.
type EventPriority string

const (
	PriorityLow    EventPriority = "LOW"
	PriorityMedium EventPriority = "MEDIUM"
	PriorityHigh   EventPriority = "HIGH"
)

// EventCategory enumerates the kinds of agenda entries.
type EventCategory string

const (
	CategoryReuniao      EventCategory = "REUNIAO"
	CategoryCerimonia    EventCategory = "CERIMONIA"
	CategoryEvento       EventCategory = "EVENTO"
	CategoryDeslocamento EventCategory = "DESLOCAMENTO"
	CategoryOutro        EventCategory = "OUTRO"
)

// Setor tags the organizational units involved in an event.
type Setor string

const (
	SetorPresidencia Setor = "PRESIDENCIA"
	SetorSerep       Setor = "SEREP"
	SetorAsmil       Setor = "ASMIL"
	SetorOutro       Setor = "OUTRO"
)

// ValidPriority reports whether the value belongs to the priority scale.
func ValidPriority(p EventPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c EventCategory) bool {
	switch c {
	case CategoryReuniao, CategoryCerimonia, CategoryEvento, CategoryDeslocamento, CategoryOutro:
		return true
	}
	return false
}

// Event represents an agenda entry. StartTime is always strictly before EndTime.
type Event struct {
	ID                    string         `db:"id" json:"id"`
	Title                 string         `db:"title" json:"title"`
	Description           string         `db:"description" json:"description"`
	StartTime             time.Time      `db:"start_time" json:"start_time"`
	EndTime               time.Time      `db:"end_time" json:"end_time"`
	Location              string         `db:"location" json:"location"`
	Priority              EventPriority  `db:"priority" json:"priority"`
	Category              EventCategory  `db:"category" json:"category"`
	CreatedBy             string         `db:"created_by" json:"created_by"`
	SetoresEnvolvidos     pq.StringArray `db:"setores_envolvidos" json:"setores_envolvidos"`
	GoogleCalendarEventID *string        `db:"google_calendar_event_id" json:"google_calendar_event_id,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows down event listings.
type EventFilter struct {
	Start    *time.Time
	End      *time.Time
	Setor    string
	Priority string
	Category string
	Search   string
	Page     int
	Limit    int
}

// ConflictInfo pairs an existing event with the window in which it overlaps
// a queried interval. Derived on demand, never persisted.
type ConflictInfo struct {
	Event        Event     `json:"event"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}
