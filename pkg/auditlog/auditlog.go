package auditlog

import (
	"context"

	"shelf/pkg/models"

	"go.uber.org/zap"
)

type Persister interface {
	PersistLog(ctx context.Context, auditLog models.AuditLog, data interface{}) error
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

type Auditlog struct {
	r      Persister
	logger *zap.Logger
}

func NewAuditLog(r Persister, logger *zap.Logger) *Auditlog {
	return &Auditlog{r: r, logger: logger}
}

type userIDKey struct{}

// WithUserID attaches the acting user to ctx so Log can record who did it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// Log records action on item. Failures are logged and swallowed: the audit
// trail never fails the mutation it describes.
func (a *Auditlog) Log(ctx context.Context, action string, data interface{}, item Auditable) {
	if a == nil {
		return
	}

	auditLog := item.CreateLogView()
	auditLog.Action = action
	if userID, ok := UserIDFromContext(ctx); ok {
		auditLog.UserID = &userID
	}

	if err := a.r.PersistLog(context.WithoutCancel(ctx), auditLog, data); err != nil {
		a.logger.Warn("unable to create audit log entry",
			zap.String("resource_type", auditLog.ResourceType),
			zap.String("resource_id", auditLog.ResourceID),
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("created audit log entry",
		zap.String("resource_type", auditLog.ResourceType),
		zap.String("resource_id", auditLog.ResourceID),
		zap.String("action", action),
	)
}
