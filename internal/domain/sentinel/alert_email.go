package sentinel

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viverecare/vivere/internal/platform/db"
	"github.com/viverecare/vivere/internal/platform/mailer"
)

// EmailAlertChannel alerts the facility's technical manager (RT) by email
// when a sentinel event opens a regulatory tracking.
type EmailAlertChannel struct {
	pool   *pgxpool.Pool
	mailer *mailer.Mailer
}

func NewEmailAlertChannel(pool *pgxpool.Pool, m *mailer.Mailer) *EmailAlertChannel {
	return &EmailAlertChannel{pool: pool, mailer: m}
}

func (c *EmailAlertChannel) conn(ctx context.Context) interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
} {
	if conn := db.ConnFromContext(ctx); conn != nil {
		return conn
	}
	return c.pool
}

func (c *EmailAlertChannel) SendToResponsibleClinician(ctx context.Context, tenantID string, summary AlertSummary) ([]string, error) {
	var name, email string
	err := c.conn(ctx).QueryRow(ctx, `
		SELECT name, email FROM user_profile
		WHERE position_code = 'TECHNICAL_MANAGER' AND active AND deleted_at IS NULL
		ORDER BY created_at LIMIT 1`).Scan(&name, &email)
	if err != nil {
		return nil, fmt.Errorf("lookup technical manager: %w", err)
	}

	data := map[string]string{
		"recipient_name":  name,
		"facility_name":   tenantID,
		"event_type":      summary.EventType,
		"resident_id":     summary.ResidentID.String(),
		"date":            summary.Date,
		"time":            summary.Time,
		"description":     summary.Description,
		"action_taken":    summary.ActionTaken,
		"legal_reference": "RDC 502/2021 Art. 55",
		"deadline":        "24 horas",
		"tracking_id":     summary.TrackingID.String(),
	}
	if err := c.mailer.SendTemplate(ctx, "sentinel-event-alert", data, []string{email}); err != nil {
		return nil, err
	}
	return []string{email}, nil
}
