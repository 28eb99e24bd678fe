package sentinel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/viverecare/vivere/internal/domain/incident"
	"github.com/viverecare/vivere/internal/domain/notification"
)

// ErrInvalidTransition is returned when an operator action does not match the
// tracking row's current status.
var ErrInvalidTransition = errors.New("invalid sentinel status transition")

// AlertSummary is the incident digest handed to the alert channel.
type AlertSummary struct {
	TrackingID  uuid.UUID
	IncidentID  uuid.UUID
	ResidentID  uuid.UUID
	EventType   string
	Date        string
	Time        string
	Description string
	ActionTaken string
	RecordedBy  string
}

// AlertChannel notifies the facility's accountable clinician out of band.
// Returns the addresses actually notified. Failures are non-fatal to the
// workflow.
type AlertChannel interface {
	SendToResponsibleClinician(ctx context.Context, tenantID string, summary AlertSummary) ([]string, error)
}

type Service struct {
	repo     Repository
	notifier *notification.Service
	alerts   AlertChannel
	clock    func() time.Time
	log      zerolog.Logger
}

func NewService(repo Repository, notifier *notification.Service, alerts AlertChannel, clock func() time.Time, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		alerts:   alerts,
		clock:    clock,
		log:      log.With().Str("component", "sentinel_service").Logger(),
	}
}

// HandleIncidentCreated runs the regulatory workflow for sentinel incidents:
// a CRITICAL broadcast notification, a PENDING tracking row with the 24h
// reporting deadline, and an alert to the accountable clinician. It is
// subscribed to the incident bus; any failure is logged and contained. The
// workflow continues on a detached context so it completes even if the
// triggering request is cancelled mid-flight.
func (s *Service) HandleIncidentCreated(ctx context.Context, ev incident.CreatedEvent) {
	inc := ev.Incident
	if inc == nil || !inc.IsSentinelEvent {
		return
	}

	ctx = context.WithoutCancel(ctx)
	log := s.log.With().
		Str("tenant_id", ev.TenantID).
		Str("incident_id", inc.ID.String()).
		Str("resident_id", inc.ResidentID.String()).
		Logger()

	log.Warn().Str("subtype", string(inc.Subtype)).Msg("sentinel event detected")

	// Duplicate bus delivery must not create a second tracking row.
	if existing, err := s.repo.GetByIncidentID(ctx, inc.ID); err == nil {
		log.Debug().Str("tracking_id", existing.ID.String()).Msg("sentinel workflow already ran for incident")
		return
	} else if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Msg("sentinel tracking lookup failed")
		return
	}

	eventType := EventTypeLabel(string(inc.Subtype))
	notif, err := s.createSentinelNotification(ctx, ev.TenantID, inc, eventType)
	if err != nil {
		log.Error().Err(err).Msg("sentinel notification failed")
		return
	}

	now := s.clock()
	tracking := &Tracking{
		IncidentID:     inc.ID,
		NotificationID: notif.ID,
		EventType:      string(inc.Subtype),
		Status:         StatusPending,
		ReportDueAt:    now.Add(ReportDeadline),
	}
	if err := s.repo.Create(ctx, tracking); err != nil {
		log.Error().Err(err).Msg("sentinel tracking creation failed")
		return
	}
	log.Info().
		Str("tracking_id", tracking.ID.String()).
		Time("report_due_at", tracking.ReportDueAt).
		Msg("sentinel tracking created")

	s.alertResponsibleClinician(ctx, ev.TenantID, inc, tracking, eventType)
}

func (s *Service) createSentinelNotification(ctx context.Context, tenantID string, inc *incident.Incident, eventType string) (*notification.Notification, error) {
	incidentID := inc.ID
	n := &notification.Notification{
		Type:       notification.TypeIncidentSentinelEvent,
		Category:   notification.CategoryIncident,
		Severity:   notification.SeverityCritical,
		Title:      fmt.Sprintf("EVENTO SENTINELA: %s", eventType),
		Message:    "Notificação obrigatória à vigilância epidemiológica conforme RDC 502/2021 Art. 55. Prazo: 24 horas.",
		ActionURL:  fmt.Sprintf("/residents/%s/incidents/%s", inc.ResidentID, inc.ID),
		EntityType: "INCIDENT",
		EntityID:   &incidentID,
		Metadata: map[string]interface{}{
			"resident_id":       inc.ResidentID.String(),
			"event_type":        string(inc.Subtype),
			"date":              inc.Date,
			"urgency":           "IMMEDIATE",
			"legal_requirement": "RDC 502/2021 Art. 55",
		},
	}
	surviving, created, err := s.notifier.BroadcastOnce(ctx, tenantID, n)
	if err != nil {
		return nil, err
	}
	if !created {
		s.log.Debug().Str("notification_id", surviving.ID.String()).Msg("sentinel notification already exists")
	}
	return surviving, nil
}

// alertResponsibleClinician records whether the out-of-band alert went out.
// A delivery failure leaves the flag false and the workflow intact.
func (s *Service) alertResponsibleClinician(ctx context.Context, tenantID string, inc *incident.Incident, tracking *Tracking, eventType string) {
	tod := ""
	if inc.Time != nil {
		tod = *inc.Time
	}
	recipients, err := s.alerts.SendToResponsibleClinician(ctx, tenantID, AlertSummary{
		TrackingID:  tracking.ID,
		IncidentID:  inc.ID,
		ResidentID:  inc.ResidentID,
		EventType:   eventType,
		Date:        inc.Date,
		Time:        tod,
		Description: inc.Description,
		ActionTaken: inc.ActionTaken,
		RecordedBy:  inc.RecordedBy,
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("tracking_id", tracking.ID.String()).
			Msg("responsible clinician alert failed")
		return
	}

	now := s.clock()
	tracking.AlertSent = true
	tracking.AlertSentAt = &now
	tracking.AlertRecipients = recipients
	if err := s.repo.Update(ctx, tracking); err != nil {
		s.log.Error().Err(err).
			Str("tracking_id", tracking.ID.String()).
			Msg("failed to record alert delivery")
		return
	}
	s.log.Info().
		Str("tracking_id", tracking.ID.String()).
		Strs("recipients", recipients).
		Msg("responsible clinician alerted")
}

// MarkSent records that the regulatory report was filed. Valid only from
// PENDING and requires the authority's protocol number.
func (s *Service) MarkSent(ctx context.Context, id uuid.UUID, protocol, responsibleParty, notes string) (*Tracking, error) {
	if protocol == "" {
		return nil, fmt.Errorf("protocol is required to mark a report as sent")
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot mark %s tracking as sent", ErrInvalidTransition, t.Status)
	}

	now := s.clock()
	t.Status = StatusSent
	t.Protocol = protocol
	t.ResponsibleParty = responsibleParty
	t.SentAt = &now
	if notes != "" {
		t.Notes = notes
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tracking_id", t.ID.String()).
		Str("protocol", protocol).
		Msg("sentinel report marked sent")
	return t, nil
}

// MarkConfirmed records the authority's confirmation. Valid from SENT;
// calling it again on a CONFIRMED row is a no-op.
func (s *Service) MarkConfirmed(ctx context.Context, id uuid.UUID, notes string) (*Tracking, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusConfirmed {
		return t, nil
	}
	if t.Status != StatusSent {
		return nil, fmt.Errorf("%w: cannot confirm a %s tracking", ErrInvalidTransition, t.Status)
	}

	now := s.clock()
	t.Status = StatusConfirmed
	t.ConfirmedAt = &now
	if notes != "" {
		t.Notes = notes
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Str("tracking_id", t.ID.String()).Msg("sentinel report confirmed")
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tracking, error) {
	return s.repo.GetByID(ctx, id)
}

// ListView is a tracking row plus its computed deadline state.
type ListView struct {
	*Tracking
	Overdue bool `json:"overdue"`
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]ListView, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	views := make([]ListView, 0, len(items))
	for _, t := range items {
		views = append(views, ListView{Tracking: t, Overdue: t.Overdue(now)})
	}
	return views, nil
}
