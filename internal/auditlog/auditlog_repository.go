package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) PersistLog(ctx context.Context, auditLog models.AuditLog, auditLogData interface{}) error {
	dataJSON, err := json.Marshal(auditLogData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	query := r.repository.GoquDBWrapper.Insert("audit_logs").
		Rows(goqu.Record{
			"id":              uuid.NewString(),
			"organization_id": auditLog.OrganizationID,
			"resource_id":     auditLog.ResourceID,
			"resource_type":   auditLog.ResourceType,
			"action":          auditLog.Action,
			"data":            string(dataJSON),
			"user_id":         auditLog.UserID,
			"created_at":      time.Now().UTC(),
		})

	if _, err = query.Executor().ExecContext(ctx); err != nil {
		return custom_error.Storage("insert audit log", err)
	}

	return nil
}

func (r *AuditLogRepository) GetResourceLog(ctx context.Context, organizationID, resourceType, resourceID string) ([]models.AuditLog, error) {
	query := r.repository.GoquDBWrapper.
		From("audit_logs").
		Select("id", "organization_id", "resource_id", "resource_type", "action", "data", "user_id", "created_at").
		Where(goqu.Ex{
			"organization_id": organizationID,
			"resource_id":     resourceID,
			"resource_type":   resourceType,
		}).
		Order(goqu.I("created_at").Asc())

	auditLogs := []models.AuditLog{}
	if err := query.Executor().ScanStructsContext(ctx, &auditLogs); err != nil {
		return nil, custom_error.Storage("select audit logs", err)
	}

	for i := range auditLogs {
		auditLogs[i].LoadFromDB()
	}

	return auditLogs, nil
}
