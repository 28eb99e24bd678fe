package incident

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viverecare/vivere/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const incidentCols = `id, resident_id, category, subtype, severity, civil_date, civil_time, description, action_taken, is_sentinel_event, indicators, source_observation_id, auto_detected, author_id, recorded_by, created_at, deleted_at`

func scanIncident(row pgx.Row) (*Incident, error) {
	var inc Incident
	err := row.Scan(&inc.ID, &inc.ResidentID, &inc.Category, &inc.Subtype, &inc.Severity,
		&inc.Date, &inc.Time, &inc.Description, &inc.ActionTaken, &inc.IsSentinelEvent,
		&inc.Indicators, &inc.SourceObservationID, &inc.AutoDetected, &inc.AuthorID,
		&inc.RecordedBy, &inc.CreatedAt, &inc.DeletedAt)
	return &inc, err
}

func (r *repoPG) Create(ctx context.Context, inc *Incident) error {
	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO incident (id, resident_id, category, subtype, severity, civil_date, civil_time, description, action_taken, is_sentinel_event, indicators, source_observation_id, auto_detected, author_id, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		inc.ID, inc.ResidentID, inc.Category, inc.Subtype, inc.Severity, inc.Date, inc.Time,
		inc.Description, inc.ActionTaken, inc.IsSentinelEvent, inc.Indicators,
		inc.SourceObservationID, inc.AutoDetected, inc.AuthorID, inc.RecordedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	inc, err := scanIncident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+incidentCols+` FROM incident WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (r *repoPG) ListByResident(ctx context.Context, residentID uuid.UUID, dateFrom, dateTo string) ([]*Incident, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+incidentCols+` FROM incident
		WHERE resident_id = $1
		  AND civil_date >= $2 AND civil_date <= $3
		  AND deleted_at IS NULL
		ORDER BY civil_date, civil_time NULLS FIRST`,
		residentID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func (r *repoPG) ListByResidentAndKind(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, dateFrom, dateTo string) ([]*Incident, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+incidentCols+` FROM incident
		WHERE resident_id = $1 AND category = $2 AND subtype = $3
		  AND civil_date >= $4 AND civil_date <= $5
		  AND deleted_at IS NULL
		ORDER BY civil_date, civil_time NULLS FIRST`,
		residentID, category, subtype, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func (r *repoPG) ExistsOnDate(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, civilDate string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM incident
			WHERE resident_id = $1 AND category = $2 AND subtype = $3
			  AND civil_date = $4 AND deleted_at IS NULL
		)`, residentID, category, subtype, civilDate).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsForSource(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, sourceObservationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM incident
			WHERE resident_id = $1 AND category = $2 AND subtype = $3
			  AND source_observation_id = $4 AND deleted_at IS NULL
		)`, residentID, category, subtype, sourceObservationID).Scan(&exists)
	return exists, err
}

func collectIncidents(rows pgx.Rows) ([]*Incident, error) {
	var items []*Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inc)
	}
	return items, rows.Err()
}
