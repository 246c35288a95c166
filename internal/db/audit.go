package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one administrative mutation against the catalog or orders.
type AuditLog struct {
	ID         uuid.UUID
	Actor      string
	Action     string
	Resource   string
	ResourceID *string
	Method     string
	Route      *string
	Status     int32
	IP         *string
	UserAgent  *string
	RequestID  *string
	Metadata   []byte
	CreatedAt  time.Time
}

const auditColumns = `id, actor, action, resource, resource_id, method, route, status, ip, user_agent, request_id, metadata, created_at`

// InsertAuditLogParams carries the fields written for a new audit entry.
type InsertAuditLogParams struct {
	Actor      string
	Action     string
	Resource   string
	ResourceID *string
	Method     string
	Route      *string
	Status     int32
	IP         *string
	UserAgent  *string
	RequestID  *string
	Metadata   []byte
}

// InsertAuditLog appends one entry to the audit trail.
func (s *Store) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) error {
	metadata := arg.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO audit_logs (actor, action, resource, resource_id, method, route, status, ip, user_agent, request_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		arg.Actor, arg.Action, arg.Resource, arg.ResourceID, arg.Method, arg.Route,
		arg.Status, arg.IP, arg.UserAgent, arg.RequestID, metadata)
	return err
}

// ListAuditLogs pages the trail newest first, optionally filtered by action.
func (s *Store) ListAuditLogs(ctx context.Context, action *string, limit, offset int32) ([]AuditLog, int64, error) {
	var total int64
	if err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM audit_logs WHERE ($1::text IS NULL OR action = $1)`, action).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE ($1::text IS NULL OR action = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		action, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var logs []AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.Actor, &l.Action, &l.Resource, &l.ResourceID, &l.Method,
			&l.Route, &l.Status, &l.IP, &l.UserAgent, &l.RequestID, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
