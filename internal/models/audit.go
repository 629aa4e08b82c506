package models

import (
	"encoding/json"
	"time"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionLogin  = "LOGIN"
	AuditActionLogout = "LOGOUT"
)

// Audited entity types.
const (
	EntityEvent          = "EVENT"
	EntityUser           = "USER"
	EntitySharedCalendar = "SHARED_CALENDAR"
	EntityAuth           = "AUTH"
)

// AuditLog represents one audit trail record with a changed-field snapshot.
type AuditLog struct {
	ID         string  `db:"id" json:"id"`
	UserID     *string `db:"user_id" json:"user_id,omitempty"`
	Action     string  `db:"action" json:"action"`
	EntityType string  `db:"entity_type" json:"entity_type"`
	EntityID   *string `db:"entity_id" json:"entity_id,omitempty"`
	// ChangedFields holds the snapshot as raw JSON so responses render it
	// structurally instead of base64.
	ChangedFields json.RawMessage `db:"changed_fields" json:"changed_fields,omitempty"`
	IPAddress     string          `db:"ip_address" json:"ip_address"`
	UserAgent     string          `db:"user_agent" json:"user_agent"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// RequestMeta carries per-request client details into audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	EntityType string
	Page       int
	Limit      int
}
