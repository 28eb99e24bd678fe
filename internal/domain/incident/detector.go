package incident

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/viverecare/vivere/internal/domain/notification"
	"github.com/viverecare/vivere/internal/domain/observation"
)

// Detector is the detection pipeline entry point. It runs every registered
// rule against a freshly recorded observation, routes ALERT candidates to the
// notification feed and INCIDENT candidates through dedup and the recorder.
//
// OnObservationCreated never fails the caller: the observation is already
// durably written and detection is a best-effort side effect.
type Detector struct {
	rules      []Rule
	agg        *observation.Aggregator
	recorder   *Recorder
	notifier   *notification.Service
	recipients notification.RecipientResolver
	log        zerolog.Logger
	metrics    *Metrics
}

func NewDetector(
	rules []Rule,
	agg *observation.Aggregator,
	recorder *Recorder,
	notifier *notification.Service,
	recipients notification.RecipientResolver,
	log zerolog.Logger,
	metrics *Metrics,
) *Detector {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Detector{
		rules:      rules,
		agg:        agg,
		recorder:   recorder,
		notifier:   notifier,
		recipients: recipients,
		log:        log.With().Str("component", "incident_detector").Logger(),
		metrics:    metrics,
	}
}

func (d *Detector) OnObservationCreated(ctx context.Context, tenantID string, o *observation.Observation, recordedByUserID string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("tenant_id", tenantID).
				Str("observation_id", o.ID.String()).
				Msg("detection pipeline panicked")
		}
	}()

	log := d.log.With().
		Str("tenant_id", tenantID).
		Str("observation_id", o.ID.String()).
		Str("resident_id", o.ResidentID.String()).
		Str("category", string(o.Category)).
		Logger()

	d.metrics.ObservationsEvaluated.WithLabelValues(string(o.Category)).Inc()

	for _, rule := range d.rules {
		if rule.Category != o.Category {
			continue
		}
		cands, err := rule.Evaluate(ctx, tenantID, o, d.agg)
		if err != nil {
			d.metrics.RuleErrors.WithLabelValues(rule.ID).Inc()
			log.Error().Err(err).Str("rule", rule.ID).Msg("rule evaluation failed")
			continue
		}
		for i := range cands {
			cand := &cands[i]
			d.metrics.CandidatesTotal.WithLabelValues(cand.RuleID, string(cand.Disposition)).Inc()
			switch cand.Disposition {
			case DispositionAlert:
				if err := d.dispatchAlert(ctx, tenantID, cand, recordedByUserID); err != nil {
					log.Error().Err(err).Str("rule", cand.RuleID).Msg("alert dispatch failed")
				}
			case DispositionIncident:
				if _, err := d.recorder.Record(ctx, tenantID, cand); err != nil {
					log.Error().Err(err).Str("rule", cand.RuleID).Str("subtype", string(cand.Subtype)).Msg("incident recording failed")
				}
			default:
				log.Warn().Str("rule", cand.RuleID).Str("disposition", string(cand.Disposition)).Msg("candidate with unknown disposition dropped")
			}
		}
	}
}

// dispatchAlert sends a monitoring alert to the incident recipients. Resolver
// failures degrade to broadcast rather than losing the alert.
func (d *Detector) dispatchAlert(ctx context.Context, tenantID string, cand *Candidate, recordedByUserID string) error {
	recipients, err := d.recipients.GetIncidentRecipients(ctx, tenantID, recordedByUserID)
	if err != nil {
		d.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("recipient resolution failed, broadcasting alert")
		recipients = nil
	}

	sourceID := cand.Source.ID
	n := &notification.Notification{
		Type:       notification.TypeIncidentAlert,
		Category:   notification.CategoryIncident,
		Severity:   notification.MapSeverity(string(cand.Severity)),
		Title:      "Alerta de Monitoramento",
		Message:    cand.Description,
		ActionURL:  fmt.Sprintf("/residents/%s/observations", cand.Source.ResidentID),
		EntityType: "OBSERVATION",
		EntityID:   &sourceID,
		Metadata: map[string]interface{}{
			"rule":           cand.RuleID,
			"resident_id":    cand.Source.ResidentID.String(),
			"severity":       string(cand.Severity),
			"recommendation": cand.Action,
		},
	}
	return d.notifier.Directed(ctx, tenantID, recipients, n)
}
