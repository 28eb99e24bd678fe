package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/viverecare/vivere/internal/domain/observation"
)

const refusalWindow = 24 * time.Hour

// mealEventTable maps mealtime occurrences recorded in the feeding payload to
// their clinical grading. "Recusa" stays LOW here because an outright intake
// refusal is already covered by the food-refusal candidate.
var mealEventTable = map[string]struct {
	Subtype  Subtype
	Severity Severity
	Action   string
}{
	"Engasgo": {SubtypeOtherClinical, SeveritySevere, "URGENTE: Verificar via aérea e saturação de O2. Avaliar causa e monitorar."},
	"Vômito":  {SubtypeVomiting, SeverityModerate, "Avaliar causa e monitorar. Observar sinais de desidratação e novos episódios."},
	"Náusea":  {SubtypeOtherClinical, SeverityLow, "Avaliar causa e monitorar. Oferecer refeição leve quando tolerado."},
	"Recusa":  {SubtypeOtherClinical, SeverityLow, "Avaliar causa e monitorar. Registrar aceitação nas próximas refeições."},
}

// evaluateFeeding covers three detections on one meal record: an intake
// refusal, a same-day refusal pattern escalating to malnutrition risk, and a
// mealtime event such as choking or vomiting.
func evaluateFeeding(ctx context.Context, tenantID string, o *observation.Observation, agg *observation.Aggregator) ([]Candidate, error) {
	instant, err := agg.ResolveInstant(ctx, tenantID, o)
	if err != nil {
		return nil, err
	}

	var cands []Candidate

	intake := o.PayloadString("intake")
	refused := intake == "Recusou" || intake == "<25%"
	if refused {
		severity := SeverityLow
		if intake == "Recusou" {
			severity = SeverityModerate
		}
		meal := o.PayloadString("meal")
		if meal == "" {
			meal = "não especificada"
		}
		cands = append(cands, Candidate{
			RuleID:      "feeding.refusal",
			Severity:    severity,
			Category:    CategoryAssistential,
			Subtype:     SubtypeFoodRefusal,
			Description: fmt.Sprintf("Recusa alimentar detectada (%s - refeição: %s)", intake, meal),
			Action:      "Investigar causa da recusa (dor, náusea, preferências, depressão). Oferecer alternativas. Monitorar padrão de aceitação alimentar.",
			Disposition: DispositionIncident,
			Dedup:       DedupWindow,
			Window:      refusalWindow,
			Source:      o,
			Instant:     instant,
		})

		refusals, err := agg.MatchesOnDate(ctx, tenantID, o.ResidentID, observation.CategoryFeeding, o.Date,
			func(obs *observation.Observation) bool { return obs.PayloadString("intake") == "Recusou" })
		if err != nil {
			return nil, err
		}
		count := len(refusals)
		if intake == "Recusou" {
			seen := false
			for _, r := range refusals {
				if r.ID == o.ID {
					seen = true
					break
				}
			}
			if !seen {
				count++
			}
		}
		if count >= 2 {
			cands = append(cands, Candidate{
				RuleID:      "feeding.refusal",
				Severity:    SeveritySevere,
				Category:    CategoryClinical,
				Subtype:     SubtypeMalnutrition,
				Description: fmt.Sprintf("Risco de desnutrição detectado (%d recusas alimentares no dia)", count),
				Action:      "URGENTE: Avaliar sinais de desnutrição (perda de peso, IMC, albumina). Avaliar necessidade de suplementação. Comunicar nutricionista e médico.",
				Disposition: DispositionIncident,
				Indicators:  []string{IndicatorMalnutrition},
				Dedup:       DedupCalendarDay,
				Window:      refusalWindow,
				Source:      o,
				Instant:     instant,
			})
		}
	}

	event := o.PayloadString("event")
	if event != "" && event != "Nenhuma" && !(event == "Recusa" && refused) {
		mapping, ok := mealEventTable[event]
		if !ok {
			mapping.Subtype = SubtypeOtherClinical
			mapping.Severity = SeverityModerate
			mapping.Action = "Avaliar causa e monitorar."
		}
		cands = append(cands, Candidate{
			RuleID:      "feeding.meal-event",
			Severity:    mapping.Severity,
			Category:    CategoryClinical,
			Subtype:     mapping.Subtype,
			Description: fmt.Sprintf("Intercorrência durante alimentação: %s", event),
			Action:      mapping.Action,
			Disposition: DispositionIncident,
			Dedup:       DedupWindow,
			Window:      refusalWindow,
			Source:      o,
			Instant:     instant,
		})
	}

	return cands, nil
}
