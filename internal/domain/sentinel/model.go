package sentinel

import (
	"time"

	"github.com/google/uuid"
)

// Status of the mandatory health-surveillance report for a sentinel event.
// Transitions are monotonic: PENDING → SENT → CONFIRMED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusConfirmed Status = "CONFIRMED"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusSent:      true,
	StatusConfirmed: true,
}

func ValidStatus(s Status) bool { return validStatuses[s] }

// ReportDeadline is the statutory window for notifying the surveillance
// authority of a sentinel event (RDC 502/2021 Art. 55).
const ReportDeadline = 24 * time.Hour

// Tracking follows one sentinel incident from detection to the confirmed
// regulatory report. Exactly one row exists per sentinel incident.
type Tracking struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	IncidentID       uuid.UUID  `json:"incident_id" db:"incident_id"`
	NotificationID   uuid.UUID  `json:"notification_id" db:"notification_id"`
	EventType        string     `json:"event_type" db:"event_type"`
	Status           Status     `json:"status" db:"status"`
	Protocol         string     `json:"protocol,omitempty" db:"protocol"`
	ResponsibleParty string     `json:"responsible_party,omitempty" db:"responsible_party"`
	SentAt           *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	Notes            string     `json:"notes,omitempty" db:"notes"`
	AlertSent        bool       `json:"alert_sent" db:"alert_sent"`
	AlertSentAt      *time.Time `json:"alert_sent_at,omitempty" db:"alert_sent_at"`
	AlertRecipients  []string   `json:"alert_recipients,omitempty" db:"alert_recipients"`
	ReportDueAt      time.Time  `json:"report_due_at" db:"report_due_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Overdue reports whether the regulatory report is past its deadline and has
// not been sent yet.
func (t *Tracking) Overdue(now time.Time) bool {
	return t.Status == StatusPending && now.After(t.ReportDueAt)
}

// EventTypeLabel renders a subtype code as the label used on notifications
// and in the alert email.
func EventTypeLabel(subtype string) string {
	switch subtype {
	case "QUEDA_COM_LESAO":
		return "Queda com Lesão"
	case "TENTATIVA_SUICIDIO":
		return "Tentativa de Suicídio"
	case "":
		return "Evento Sentinela"
	default:
		return subtype
	}
}
