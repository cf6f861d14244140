package service

import (
	"context"

	"hrcore/internal/identity"
	"hrcore/internal/model"
	"hrcore/internal/repository"
	"hrcore/pkg/apperr"
)

// AuditService exposes the audit trail to HR reviewers.
type AuditService interface {
	List(ctx context.Context, caller identity.Identity, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, caller identity.Identity, page, limit int) ([]model.AuditLog, int64, error) {
	if !caller.HRRole {
		return nil, 0, apperr.New(apperr.CodeForbidden, "HR role required")
	}
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.CodeInternal, "failed to list audit logs", err)
	}
	return logs, total, nil
}
