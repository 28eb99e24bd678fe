package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/viverecare/vivere/internal/domain/observation"
)

const diarrheaWindow = 24 * time.Hour

func isDiarrhealStool(o *observation.Observation) bool {
	if o.PayloadString("type") != "Fezes" {
		return false
	}
	return containsAnyFold(o.PayloadString("consistency"), "diarr", "líquida", "liquida")
}

// evaluateElimination watches stool records for diarrheal consistency. Below
// three episodes in the trailing 24 hours it raises a monitoring alert; at
// three or more it opens an acute-diarrheal-disease incident plus a severe
// dehydration-risk incident, each carrying its regulatory indicator.
func evaluateElimination(ctx context.Context, tenantID string, o *observation.Observation, agg *observation.Aggregator) ([]Candidate, error) {
	if !isDiarrhealStool(o) {
		return nil, nil
	}

	instant, err := agg.ResolveInstant(ctx, tenantID, o)
	if err != nil {
		return nil, err
	}

	matches, err := agg.MatchesInWindow(ctx, tenantID, o.ResidentID, observation.CategoryElimination, instant, diarrheaWindow, isDiarrhealStool)
	if err != nil {
		return nil, err
	}

	// The triggering observation counts even if the store has not surfaced
	// it yet.
	count := len(matches)
	seen := false
	for _, m := range matches {
		if m.Observation.ID == o.ID {
			seen = true
			break
		}
	}
	if !seen {
		count++
	}

	consistency := o.PayloadString("consistency")
	if consistency == "" {
		consistency = "não especificada"
	}

	if count < 3 {
		severity := SeverityLow
		if count == 2 {
			severity = SeverityModerate
		}
		return []Candidate{{
			RuleID:      "elimination.diarrhea",
			Severity:    severity,
			Category:    CategoryClinical,
			Subtype:     SubtypeAcuteDiarrhea,
			Description: fmt.Sprintf("Evacuação diarreica registrada (%d/3 episódios em 24h, consistência: %s)", count, consistency),
			Action:      "Continuar monitorando frequência das evacuações e hidratação. Comunicar enfermagem se houver novos episódios.",
			Disposition: DispositionAlert,
			Source:      o,
			Instant:     instant,
		}}, nil
	}

	return []Candidate{
		{
			RuleID:      "elimination.diarrhea",
			Severity:    SeverityModerate,
			Category:    CategoryClinical,
			Subtype:     SubtypeAcuteDiarrhea,
			Description: fmt.Sprintf("Diarreia detectada automaticamente (%d episódios em 24h, consistência: %s)", count, consistency),
			Action:      "Monitorar hidratação, frequência das evacuações e sinais de desidratação. Comunicar enfermagem e avaliar necessidade de soro oral.",
			Disposition: DispositionIncident,
			Indicators:  []string{IndicatorAcuteDiarrhea},
			Dedup:       DedupWindow,
			Window:      diarrheaWindow,
			Source:      o,
			Instant:     instant,
		},
		{
			RuleID:      "elimination.diarrhea",
			Severity:    SeveritySevere,
			Category:    CategoryClinical,
			Subtype:     SubtypeDehydration,
			Description: fmt.Sprintf("Risco de desidratação detectado (%d evacuações diarreicas em 24h)", count),
			Action:      "URGENTE: Avaliar sinais de desidratação (mucosas secas, turgor cutâneo, diurese). Iniciar reposição hídrica. Comunicar médico imediatamente.",
			Disposition: DispositionIncident,
			Indicators:  []string{IndicatorDehydration},
			Dedup:       DedupCalendarDay,
			Window:      diarrheaWindow,
			Source:      o,
			Instant:     instant,
		},
	}, nil
}
