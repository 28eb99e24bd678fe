package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/viverecare/vivere/internal/domain/observation"
)

const behaviorWindow = 24 * time.Hour

var emotionalStateTable = map[string]struct {
	Subtype  Subtype
	Severity Severity
	Action   string
}{
	"Ansioso": {SubtypeAgitation, SeverityLow,
		"Oferecer ambiente calmo e atividades relaxantes. Avaliar necessidade de medicação SOS para ansiedade."},
	"Irritado": {SubtypeAggressiveness, SeverityModerate,
		"Manter distância segura. Usar comunicação calma e não-confrontacional. Avaliar causa da irritabilidade."},
	"Eufórico": {SubtypeAgitation, SeverityModerate,
		"Monitorar para evitar riscos (quedas, conflitos). Avaliar necessidade de ajuste medicamentoso."},
}

func evaluateBehavior(ctx context.Context, tenantID string, o *observation.Observation, agg *observation.Aggregator) ([]Candidate, error) {
	state := o.PayloadString("emotional_state")
	mapping, ok := emotionalStateTable[state]
	if !ok {
		return nil, nil
	}

	instant, err := agg.ResolveInstant(ctx, tenantID, o)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Alteração comportamental detectada: %s", state)
	if detail := o.PayloadString("state_detail"); detail != "" {
		description += " - " + detail
	}

	return []Candidate{{
		RuleID:      "behavior.emotional-state",
		Severity:    mapping.Severity,
		Category:    CategoryAssistential,
		Subtype:     mapping.Subtype,
		Description: description,
		Action:      mapping.Action,
		Disposition: DispositionIncident,
		Dedup:       DedupWindow,
		Window:      behaviorWindow,
		Source:      o,
		Instant:     instant,
	}}, nil
}
