package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/models"
)

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// RequestMeta carries client details recorded in the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type metaKey struct{}

// WithRequestMeta attaches client details to ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// RequestMetaFrom returns the client details attached by WithRequestMeta.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(RequestMeta)
	return meta
}

// auditTrail writes audit rows best-effort; failures are logged, never returned.
type auditTrail struct {
	repo   AuditRepository
	logger *zap.Logger
}

func newAuditTrail(repo AuditRepository, logger *zap.Logger) auditTrail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return auditTrail{repo: repo, logger: logger}
}

func (a auditTrail) record(ctx context.Context, actorID, action, resource, resourceID string, before, after interface{}) {
	if a.repo == nil {
		return
	}
	meta := RequestMetaFrom(ctx)
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		OldValues: marshalAudit(before),
		NewValues: marshalAudit(after),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func marshalAudit(value interface{}) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return raw
}
