package repository

import (
	"context"
	"time"

	"hrcore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalRepository is the query surface of the approval-request store.
type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	// FindByIDForUpdate takes a row lock; callers must hold a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]model.ApprovalRequest, int64, error)
	ListByApplicant(ctx context.Context, applicantNo int64) ([]model.ApprovalRequest, error)
	ListProcessedBy(ctx context.Context, approverNo int64) ([]model.ApprovalRequest, error)
	// FindOverlapping returns PENDING/APPROVED vacation and absence requests
	// of the applicant whose inclusive [start_date, end_date] interval
	// intersects [start, end], earliest-requested first.
	FindOverlapping(ctx context.Context, applicantNo int64, start, end time.Time) ([]model.ApprovalRequest, error)
	HasPendingCertificate(ctx context.Context, applicantNo int64, certificateType string) (bool, error)
	// FindApprovedLeaveOn returns the approved vacation or absence covering
	// the given day, or nil if the applicant is not on leave.
	FindApprovedLeaveOn(ctx context.Context, applicantNo int64, day time.Time) (*model.ApprovalRequest, error)
	Update(ctx context.Context, req *model.ApprovalRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]model.ApprovalRequest, int64, error) {
	var requests []model.ApprovalRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ApprovalRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.ApprovalRequest{})
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("requested_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *approvalRepository) ListByApplicant(ctx context.Context, applicantNo int64) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	if err := GetDB(ctx, r.db).
		Where("applicant_no = ?", applicantNo).
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) ListProcessedBy(ctx context.Context, approverNo int64) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	if err := GetDB(ctx, r.db).
		Where("approver_no = ? AND status <> ?", approverNo, model.StatusPending).
		Order("processed_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) FindOverlapping(ctx context.Context, applicantNo int64, start, end time.Time) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Where("applicant_no = ?", applicantNo).
		Where("request_type IN ?", []string{model.RequestTypeVacation, model.RequestTypeAbsence}).
		Where("status IN ?", []string{model.StatusPending, model.StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("requested_at ASC NULLS LAST").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) HasPendingCertificate(ctx context.Context, applicantNo int64, certificateType string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.ApprovalRequest{}).
		Where("applicant_no = ? AND request_type = ? AND certificate_type = ? AND status = ?",
			applicantNo, model.RequestTypeCertificate, certificateType, model.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *approvalRepository) FindApprovedLeaveOn(ctx context.Context, applicantNo int64, day time.Time) (*model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Where("applicant_no = ?", applicantNo).
		Where("request_type IN ?", []string{model.RequestTypeVacation, model.RequestTypeAbsence}).
		Where("status = ?", model.StatusApproved).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("requested_at ASC NULLS LAST").
		Limit(1).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return &requests[0], nil
}

func (r *approvalRepository) Update(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *approvalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.ApprovalRequest{}, "id = ?", id).Error
}
