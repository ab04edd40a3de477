package service

import (
	"context"

	"healthsure/internal/domain/entity"
	"healthsure/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records patient and policy changes. Failures are logged and
// returned; callers treat them as non-fatal.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, tx, action, entityName, entityID, nil, newValue)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, action, entityName, entityID, oldValue, newValue)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.write(ctx, tx, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, action, entityName, entityID string, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		Action:   action,
		Entity:   entityName,
		EntityID: entityID,
		Metadata: entity.JSON{
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(ctx, tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s for %s %s: %+v", action, entityName, entityID, err)
		return err
	}

	return nil
}
