package incident

import (
	"context"
	"strings"

	"github.com/viverecare/vivere/internal/domain/observation"
)

// RuleFunc evaluates one observation against one rule family. Rules are pure:
// they read the observation payload and query the aggregator, and return zero
// or more candidates. A payload that does not have the shape a rule expects
// means "no match", never an error; errors are reserved for failed reads.
type RuleFunc func(ctx context.Context, tenantID string, o *observation.Observation, agg *observation.Aggregator) ([]Candidate, error)

// Rule binds a rule family to the observation category it inspects.
type Rule struct {
	ID       string
	Category observation.Category
	Evaluate RuleFunc
}

// Rules returns the detection rule registry. Adding a rule family is adding
// an entry here plus its rule file; the detector's control flow is fixed.
func Rules() []Rule {
	return []Rule{
		{ID: "elimination.diarrhea", Category: observation.CategoryElimination, Evaluate: evaluateElimination},
		{ID: "feeding.refusal", Category: observation.CategoryFeeding, Evaluate: evaluateFeeding},
		{ID: "behavior.emotional-state", Category: observation.CategoryBehavior, Evaluate: evaluateBehavior},
		{ID: "hygiene.skin-lesion", Category: observation.CategoryHygiene, Evaluate: evaluateHygiene},
	}
}

func containsAnyFold(s string, terms ...string) bool {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
