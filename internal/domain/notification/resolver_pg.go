package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viverecare/vivere/internal/platform/db"
)

// Incident notifications are directed at clinical leadership rather than the
// whole staff feed.
var incidentRecipientPositions = []string{"ADMINISTRATOR", "TECHNICAL_MANAGER"}

type resolverPG struct{ pool *pgxpool.Pool }

func NewResolverPG(pool *pgxpool.Pool) RecipientResolver {
	return &resolverPG{pool: pool}
}

func (r *resolverPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// GetIncidentRecipients returns the active leadership users plus the user who
// recorded the triggering observation, de-duplicated.
func (r *resolverPG) GetIncidentRecipients(ctx context.Context, tenantID string, triggeredByUserID string) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id FROM user_profile
		WHERE position_code = ANY($1) AND active AND deleted_at IS NULL`,
		incidentRecipientPositions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if triggeredBy, err := uuid.Parse(triggeredByUserID); err == nil && !seen[triggeredBy] {
		ids = append(ids, triggeredBy)
	}
	return ids, nil
}
