package repository

import (
	"context"
	"database/sql"
	"fmt"

	"orderenricher/internal/domain"
)

type MySQLWebhookEventRepository struct {
	db *sql.DB
}

func NewMySQLWebhookEventRepository(db *sql.DB) *MySQLWebhookEventRepository {
	return &MySQLWebhookEventRepository{db: db}
}

func (r *MySQLWebhookEventRepository) Save(ctx context.Context, event *domain.WebhookEvent) error {
	query := `
		INSERT INTO WebhookEvents (traceId, orderId, status, companyId, e8CompanyId, errorCode)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.TraceID, event.OrderID, event.Status,
		nullInt64(event.CompanyID), nullString(event.E8CompanyID), nullString(event.ErrorCode),
	)
	if err != nil {
		return fmt.Errorf("inserting webhook event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	event.ID = id

	return nil
}

// FindByOrderID returns the most recent events for an order, newest first.
func (r *MySQLWebhookEventRepository) FindByOrderID(ctx context.Context, orderID string, limit int) ([]domain.WebhookEvent, error) {
	query := `
		SELECT id, traceId, orderId, status, companyId, e8CompanyId, errorCode, createdAt
		FROM WebhookEvents
		WHERE orderId = ?
		ORDER BY createdAt DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying webhook events: %w", err)
	}
	defer rows.Close()

	events := []domain.WebhookEvent{}
	for rows.Next() {
		var (
			e           domain.WebhookEvent
			companyID   sql.NullInt64
			e8CompanyID sql.NullString
			errorCode   sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.TraceID, &e.OrderID, &e.Status,
			&companyID, &e8CompanyID, &errorCode, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning webhook event: %w", err)
		}
		if companyID.Valid {
			e.CompanyID = &companyID.Int64
		}
		if e8CompanyID.Valid {
			e.E8CompanyID = &e8CompanyID.String
		}
		if errorCode.Valid {
			e.ErrorCode = &errorCode.String
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating webhook events: %w", err)
	}

	return events, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// NopWebhookEventRepository is used when no database is configured.
type NopWebhookEventRepository struct{}

func (NopWebhookEventRepository) Save(ctx context.Context, event *domain.WebhookEvent) error {
	return nil
}

func (NopWebhookEventRepository) FindByOrderID(ctx context.Context, orderID string, limit int) ([]domain.WebhookEvent, error) {
	return []domain.WebhookEvent{}, nil
}
