package incident

import (
	"context"
	"time"

	"github.com/viverecare/vivere/internal/domain/observation"
)

// skinLesionKeywords includes unaccented variants: caregivers type free text
// on tablets and the accents come and go.
var skinLesionKeywords = []string{
	"lesão", "lesao",
	"úlcera", "ulcera",
	"ferida",
	"escara",
	"decúbito", "decubito",
	"vermelhidão", "vermelhidao",
	"bolha",
}

func evaluateHygiene(ctx context.Context, tenantID string, o *observation.Observation, agg *observation.Aggregator) ([]Candidate, error) {
	notes := o.PayloadString("notes")
	if notes == "" || !containsAnyFold(notes, skinLesionKeywords...) {
		return nil, nil
	}

	instant, err := agg.ResolveInstant(ctx, tenantID, o)
	if err != nil {
		return nil, err
	}

	return []Candidate{{
		RuleID:      "hygiene.skin-lesion",
		Severity:    SeveritySevere,
		Category:    CategoryClinical,
		Subtype:     SubtypePressureUlcer,
		Description: "Possível lesão de pele/úlcera detectada durante higiene",
		Action:      "URGENTE: Avaliar lesão (localização, estágio, tamanho). Documentar com foto. Iniciar protocolo de prevenção/tratamento. Comunicar enfermagem e médico.",
		Disposition: DispositionIncident,
		Indicators:  []string{IndicatorPressureUlcer},
		Dedup:       DedupSourceRecord,
		Window:      24 * time.Hour,
		Source:      o,
		Instant:     instant,
	}}, nil
}
