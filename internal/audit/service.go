// Package audit records administrative mutations so catalog and order changes
// can be traced back to an operator action.
package audit

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/obs"
)

// Actor labels recorded for trail entries.
const (
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// Store defines the persistence required for auditing.
type Store interface {
	InsertAuditLog(ctx context.Context, arg db.InsertAuditLogParams) error
	ListAuditLogs(ctx context.Context, action *string, limit, offset int32) ([]db.AuditLog, int64, error)
}

// Service persists audit entries for administrative flows.
type Service struct {
	Store        Store
	Enabled      bool
	SamplingRate float64
}

// Record writes one trail entry for the handled request. A zero status is
// stored as 200.
func (s Service) Record(ctx context.Context, actor, action, resource, resourceID string, req *http.Request, status int, metadata []byte) error {
	if !s.Enabled {
		return nil
	}
	if s.SamplingRate > 0 && s.SamplingRate < 1 && rand.Float64() > s.SamplingRate {
		return nil
	}
	if req == nil {
		return errors.New("audit: request is required")
	}
	if s.Store == nil {
		return errors.New("audit: store not configured")
	}

	route := obs.RoutePatternFromContext(req.Context())
	if route == "" {
		route = strings.TrimSpace(req.URL.Path)
	}
	if actor == "" {
		actor = ActorSystem
	}
	if status == 0 {
		status = http.StatusOK
	}

	return s.Store.InsertAuditLog(ctx, db.InsertAuditLogParams{
		Actor:      actor,
		Action:     buildAction(action, req.Method, route),
		Resource:   buildResource(resource, route),
		ResourceID: optional(resourceID),
		Method:     req.Method,
		Route:      optional(route),
		Status:     int32(status),
		IP:         optional(clientIP(req)),
		UserAgent:  optional(req.Header.Get("User-Agent")),
		RequestID:  optional(req.Header.Get("X-Request-ID")),
		Metadata:   metadata,
	})
}

func buildAction(action, method, route string) string {
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		return trimmed
	}
	if route == "" {
		route = "/"
	}
	return strings.ToUpper(method) + " " + route
}

func buildResource(resource, route string) string {
	if trimmed := strings.TrimSpace(resource); trimmed != "" {
		return trimmed
	}
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		segment := parts[i]
		if segment == "" || strings.HasPrefix(segment, "{") {
			continue
		}
		return segment
	}
	return "unknown"
}

func clientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
