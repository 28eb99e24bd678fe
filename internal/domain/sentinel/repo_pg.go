package sentinel

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

const trackingCols = `id, incident_id, notification_id, event_type, status, protocol, responsible_party, sent_at, confirmed_at, notes, alert_sent, alert_sent_at, alert_recipients, report_due_at, created_at, updated_at`

func scanTracking(row pgx.Row) (*Tracking, error) {
	var t Tracking
	err := row.Scan(&t.ID, &t.IncidentID, &t.NotificationID, &t.EventType, &t.Status,
		&t.Protocol, &t.ResponsibleParty, &t.SentAt, &t.ConfirmedAt, &t.Notes,
		&t.AlertSent, &t.AlertSentAt, &t.AlertRecipients, &t.ReportDueAt,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Tracking) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sentinel_tracking (id, incident_id, notification_id, event_type, status, protocol, responsible_party, sent_at, confirmed_at, notes, alert_sent, alert_sent_at, alert_recipients, report_due_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		t.ID, t.IncidentID, t.NotificationID, t.EventType, t.Status, t.Protocol,
		t.ResponsibleParty, t.SentAt, t.ConfirmedAt, t.Notes, t.AlertSent,
		t.AlertSentAt, t.AlertRecipients, t.ReportDueAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Tracking, error) {
	t, err := scanTracking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+trackingCols+` FROM sentinel_tracking WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) GetByIncidentID(ctx context.Context, incidentID uuid.UUID) (*Tracking, error) {
	t, err := scanTracking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+trackingCols+` FROM sentinel_tracking WHERE incident_id = $1`, incidentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Tracking) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE sentinel_tracking
		SET status = $2, protocol = $3, responsible_party = $4, sent_at = $5,
		    confirmed_at = $6, notes = $7, alert_sent = $8, alert_sent_at = $9,
		    alert_recipients = $10, updated_at = now()
		WHERE id = $1`,
		t.ID, t.Status, t.Protocol, t.ResponsibleParty, t.SentAt, t.ConfirmedAt,
		t.Notes, t.AlertSent, t.AlertSentAt, t.AlertRecipients)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter) ([]*Tracking, error) {
	query := `SELECT ` + trackingCols + ` FROM sentinel_tracking`
	var args []interface{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Tracking
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
