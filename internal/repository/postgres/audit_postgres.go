package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

const auditColumns = `
	a.id, a.user_id, COALESCE(u.email, ''), a.action, a.resource_type,
	a.resource_id, a.changes, a.ip_address, a.user_agent, a.created_at`

const auditFrom = ` FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id`

func scanAudit(row rowScanner) (*model.AuditLog, error) {
	var (
		e          model.AuditLog
		userID     sql.NullInt64
		resourceID sql.NullInt64
		changes    []byte
		ip, agent  sql.NullString
	)
	if err := row.Scan(&e.ID, &userID, &e.UserEmail, &e.Action, &e.ResourceType,
		&resourceID, &changes, &ip, &agent, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.UserID = userID.Int64
	e.ResourceID = resourceID.Int64
	e.IPAddress = ip.String
	e.UserAgent = agent.String
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// Create inserts an audit entry. Changes is stored as JSONB.
func (r *AuditPostgres) Create(ctx context.Context, e *model.AuditLog) error {
	var changes []byte
	if e.Changes != nil {
		var err error
		changes, err = json.Marshal(e.Changes)
		if err != nil {
			return err
		}
	}
	const q = `
		INSERT INTO audit_logs (user_id, action, resource_type, resource_id, changes, ip_address, user_agent)
		VALUES (NULLIF($1, 0), $2, $3, NULLIF($4, 0), $5, NULLIF($6, ''), NULLIF($7, ''))
	`
	_, err := r.db.ExecContext(ctx, q,
		e.UserID, e.Action, e.ResourceType, e.ResourceID, changes, e.IPAddress, e.UserAgent)
	return err
}

// List returns audit entries newest-first with the actor email joined in.
func (r *AuditPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.AuditLog], error) {
	const qCount = `SELECT COUNT(*) FROM audit_logs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT` + auditColumns + auditFrom + `
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditLog, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.AuditLog]{Items: items, Total: total}, nil
}

// Recent returns the n newest entries.
func (r *AuditPostgres) Recent(ctx context.Context, n int) ([]model.AuditLog, error) {
	const q = `SELECT` + auditColumns + auditFrom + `
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditLog, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}
