package notification

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// MapSeverity converts an incident severity grade to a notification severity.
// Every place an incident severity crosses into the notification domain goes
// through this table.
func MapSeverity(incidentSeverity string) Severity {
	switch incidentSeverity {
	case "GRAVE":
		return SeverityCritical
	case "MODERADA":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

type Category string

const (
	CategoryIncident Category = "INCIDENT"
	CategorySystem   Category = "SYSTEM"
)

// System notification types carried on the notification feed.
const (
	TypeIncidentDetected      = "INCIDENT_DETECTED"
	TypeIncidentAlert         = "INCIDENT_ALERT"
	TypeIncidentSentinelEvent = "INCIDENT_SENTINEL_EVENT"
)

// Notification is a feed entry for the facility staff. An empty Recipients
// list means broadcast: every active user of the tenant sees it. Read/ack
// state lives outside this model.
type Notification struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	Type       string                 `json:"type" db:"type"`
	Category   Category               `json:"category" db:"category"`
	Severity   Severity               `json:"severity" db:"severity"`
	Title      string                 `json:"title" db:"title"`
	Message    string                 `json:"message" db:"message"`
	ActionURL  string                 `json:"action_url,omitempty" db:"action_url"`
	EntityType string                 `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty" db:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	Recipients []uuid.UUID            `json:"recipients,omitempty" db:"recipients"`
	ExpiresAt  *time.Time             `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}
