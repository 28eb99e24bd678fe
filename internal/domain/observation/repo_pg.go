package observation

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

const observationCols = `id, resident_id, category, civil_date, civil_time, payload, author_id, recorded_by, created_at, deleted_at`

func scanObservation(row pgx.Row) (*Observation, error) {
	var o Observation
	err := row.Scan(&o.ID, &o.ResidentID, &o.Category, &o.Date, &o.Time,
		&o.Payload, &o.AuthorID, &o.RecordedBy, &o.CreatedAt, &o.DeletedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Observation) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO observation (id, resident_id, category, civil_date, civil_time, payload, author_id, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.ResidentID, o.Category, o.Date, o.Time, o.Payload, o.AuthorID, o.RecordedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Observation, error) {
	o, err := scanObservation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+observationCols+` FROM observation WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repoPG) ListByResidentAndCategory(ctx context.Context, residentID uuid.UUID, category Category, dateFrom, dateTo string) ([]*Observation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+observationCols+` FROM observation
		WHERE resident_id = $1 AND category = $2
		  AND civil_date >= $3 AND civil_date <= $4
		  AND deleted_at IS NULL
		ORDER BY civil_date, civil_time NULLS FIRST`,
		residentID, category, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
