package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hrcore/internal/gateway"
	"hrcore/internal/identity"
	"hrcore/internal/model"
	"hrcore/internal/repository"
	"hrcore/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fallbackHRApproverNo is the employee certificate requests are assigned to
// when the directory cannot name an HR role-holder.
const fallbackHRApproverNo int64 = 9000

// DecisionNotifier pushes decision events to connected dashboards. May be nil.
type DecisionNotifier interface {
	Publish(message []byte)
}

// ApprovalService owns the lifecycle of an approval request: conflict-checked
// creation, the single terminal approve/reject transition with its
// compensating side effect, and applicant amend/cancel.
type ApprovalService interface {
	CreateVacation(ctx context.Context, caller identity.Identity, req CreateVacationDTO) (ApprovalResponse, error)
	CreateCertificate(ctx context.Context, caller identity.Identity, req CreateCertificateDTO) (ApprovalResponse, error)
	CreateAbsence(ctx context.Context, caller identity.Identity, req CreateAbsenceDTO) (ApprovalResponse, error)

	GetByID(ctx context.Context, id string) (ApprovalResponse, error)
	List(ctx context.Context, caller identity.Identity, filter ApprovalFilter) ([]ApprovalResponse, int64, error)
	ListMine(ctx context.Context, caller identity.Identity) ([]ApprovalResponse, error)
	ListProcessedByMe(ctx context.Context, caller identity.Identity) ([]ApprovalResponse, error)

	Approve(ctx context.Context, caller identity.Identity, id string) (ApprovalResponse, error)
	Reject(ctx context.Context, caller identity.Identity, id string, comment string) (ApprovalResponse, error)
	Amend(ctx context.Context, caller identity.Identity, id string, patch AmendAbsenceDTO) (ApprovalResponse, error)
	Cancel(ctx context.Context, caller identity.Identity, id string) error

	HasApprovedLeave(ctx context.Context, applicantNo int64, day time.Time) (bool, error)
	ApprovedLeaveType(ctx context.Context, applicantNo int64, day time.Time) (*string, error)
}

type approvalService struct {
	repo       repository.ApprovalRepository
	audit      repository.AuditRepository
	tx         repository.TransactionManager
	validator  *ConflictValidator
	dispatcher *Dispatcher
	directory  gateway.DirectoryGateway
	names      *NameResolver
	notifier   DecisionNotifier
	log        *zap.Logger
}

func NewApprovalService(
	repo repository.ApprovalRepository,
	audit repository.AuditRepository,
	tx repository.TransactionManager,
	validator *ConflictValidator,
	dispatcher *Dispatcher,
	directory gateway.DirectoryGateway,
	names *NameResolver,
	notifier DecisionNotifier,
	log *zap.Logger,
) ApprovalService {
	return &approvalService{
		repo:       repo,
		audit:      audit,
		tx:         tx,
		validator:  validator,
		dispatcher: dispatcher,
		directory:  directory,
		names:      names,
		notifier:   notifier,
		log:        log,
	}
}

// --- Creation ---

func (s *approvalService) CreateVacation(ctx context.Context, caller identity.Identity, req CreateVacationDTO) (ApprovalResponse, error) {
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return ApprovalResponse{}, err
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return ApprovalResponse{}, err
	}
	if end.Before(start) {
		return ApprovalResponse{}, apperr.New(apperr.CodeBadRequest, "end_date must not precede start_date")
	}

	candidate := &model.ApprovalRequest{
		RequestType:  model.RequestTypeVacation,
		ApplicantNo:  req.ApplicantNo,
		Title:        req.Title,
		Reason:       req.Reason,
		VacationID:   &req.VacationID,
		VacationType: &req.VacationType,
		StartDate:    &start,
		EndDate:      &end,
	}
	return s.create(ctx, caller, candidate)
}

func (s *approvalService) CreateCertificate(ctx context.Context, caller identity.Identity, req CreateCertificateDTO) (ApprovalResponse, error) {
	candidate := &model.ApprovalRequest{
		RequestType:     model.RequestTypeCertificate,
		ApplicantNo:     req.ApplicantNo,
		Title:           req.Title,
		Reason:          req.Reason,
		CertificateID:   &req.CertificateID,
		CertificateType: &req.CertificateType,
	}
	return s.create(ctx, caller, candidate)
}

func (s *approvalService) CreateAbsence(ctx context.Context, caller identity.Identity, req CreateAbsenceDTO) (ApprovalResponse, error) {
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return ApprovalResponse{}, err
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return ApprovalResponse{}, err
	}
	if end.Before(start) {
		return ApprovalResponse{}, apperr.New(apperr.CodeBadRequest, "end_date must not precede start_date")
	}

	candidate := &model.ApprovalRequest{
		RequestType: model.RequestTypeAbsence,
		ApplicantNo: req.ApplicantNo,
		Title:       req.Title,
		Reason:      req.Reason,
		AbsenceID:   &req.AbsenceID,
		AbsenceType: &req.AbsenceType,
		StartDate:   &start,
		EndDate:     &end,
	}
	if req.Urgency != "" {
		candidate.Urgency = &req.Urgency
	}
	if req.StartTime != "" {
		candidate.StartTime = &req.StartTime
	}
	if req.EndTime != "" {
		candidate.EndTime = &req.EndTime
	}
	return s.create(ctx, caller, candidate)
}

// create runs the shared acceptance path: identity check, conflict
// validation, certificate approver pre-assignment, persist PENDING.
func (s *approvalService) create(ctx context.Context, caller identity.Identity, candidate *model.ApprovalRequest) (ApprovalResponse, error) {
	if !caller.Owns(candidate.ApplicantNo) {
		return ApprovalResponse{}, apperr.New(apperr.CodeForbidden, "applicant must match the authenticated caller")
	}

	if err := s.validator.Validate(ctx, candidate); err != nil {
		return ApprovalResponse{}, err
	}

	candidate.Status = model.StatusPending
	candidate.RequestedAt = time.Now()

	// Certificate requests are pre-assigned to the HR role-holder; every
	// other type leaves the approver open until the decision.
	if candidate.RequestType == model.RequestTypeCertificate {
		approverNo := s.resolveHRApprover(ctx)
		candidate.ApproverNo = &approverNo
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, candidate); createErr != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to create approval request", createErr)
		}
		return s.writeAudit(txCtx, &caller.EmployeeNo, model.ActionCreateApprovalRequest, candidate)
	})
	if err != nil {
		return ApprovalResponse{}, err
	}

	s.log.Info("approval request created",
		zap.String("request_id", candidate.ID.String()),
		zap.String("request_type", candidate.RequestType),
		zap.Int64("applicant_no", candidate.ApplicantNo))

	return s.enrichOne(ctx, *candidate), nil
}

func (s *approvalService) resolveHRApprover(ctx context.Context) int64 {
	holder, err := s.directory.GetHRRoleHolder(ctx)
	if err != nil || holder == nil {
		s.log.Warn("HR role-holder resolution failed, using fallback approver",
			zap.Int64("fallback", fallbackHRApproverNo),
			zap.Error(err))
		return fallbackHRApproverNo
	}
	return holder.EmployeeNo
}

// --- Reads ---

func (s *approvalService) GetByID(ctx context.Context, id string) (ApprovalResponse, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return ApprovalResponse{}, err
	}

	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return ApprovalResponse{}, notFoundOrInternal(err)
	}
	return s.enrichOne(ctx, *req), nil
}

func (s *approvalService) List(ctx context.Context, caller identity.Identity, filter ApprovalFilter) ([]ApprovalResponse, int64, error) {
	if !caller.HRRole {
		return nil, 0, apperr.New(apperr.CodeForbidden, "HR role required")
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	requests, total, err := s.repo.ListByStatus(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.CodeInternal, "failed to list approval requests", err)
	}
	return s.enrichPage(ctx, requests), total, nil
}

func (s *approvalService) ListMine(ctx context.Context, caller identity.Identity) ([]ApprovalResponse, error) {
	requests, err := s.repo.ListByApplicant(ctx, caller.EmployeeNo)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list approval requests", err)
	}
	return s.enrichPage(ctx, requests), nil
}

func (s *approvalService) ListProcessedByMe(ctx context.Context, caller identity.Identity) ([]ApprovalResponse, error) {
	if !caller.HRRole {
		return nil, apperr.New(apperr.CodeForbidden, "HR role required")
	}

	requests, err := s.repo.ListProcessedBy(ctx, caller.EmployeeNo)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list processed requests", err)
	}
	return s.enrichPage(ctx, requests), nil
}

// --- Terminal transition ---

func (s *approvalService) Approve(ctx context.Context, caller identity.Identity, id string) (ApprovalResponse, error) {
	return s.decide(ctx, caller, id, gateway.OutcomeApproved, "")
}

func (s *approvalService) Reject(ctx context.Context, caller identity.Identity, id string, comment string) (ApprovalResponse, error) {
	return s.decide(ctx, caller, id, gateway.OutcomeRejected, comment)
}

// decide performs the single terminal transition. The row lock makes the
// pending check and the write atomic, and the side-effect dispatch runs
// inside the same transaction: a collaborator failure rolls the status flip
// back and the request stays PENDING.
func (s *approvalService) decide(ctx context.Context, caller identity.Identity, id string, outcome gateway.Outcome, comment string) (ApprovalResponse, error) {
	if !caller.HRRole {
		return ApprovalResponse{}, apperr.New(apperr.CodeForbidden, "HR role required")
	}

	requestID, err := parseRequestID(id)
	if err != nil {
		return ApprovalResponse{}, err
	}

	var decided model.ApprovalRequest
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.repo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return notFoundOrInternal(findErr)
		}
		if !req.IsPending() {
			return apperr.Newf(apperr.CodeBadRequest, "approval request is already %s", req.Status)
		}

		now := time.Now()
		req.ApproverNo = &caller.EmployeeNo
		req.ProcessedAt = &now
		if outcome == gateway.OutcomeApproved {
			req.Status = model.StatusApproved
		} else {
			req.Status = model.StatusRejected
			req.RejectComment = comment
		}

		if saveErr := s.repo.Update(txCtx, req); saveErr != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to update approval request", saveErr)
		}

		if dispatchErr := s.dispatcher.Dispatch(txCtx, req, outcome); dispatchErr != nil {
			return dispatchErr
		}

		action := model.ActionApproveRequest
		if outcome == gateway.OutcomeRejected {
			action = model.ActionRejectRequest
		}
		if auditErr := s.writeAudit(txCtx, &caller.EmployeeNo, action, req); auditErr != nil {
			return auditErr
		}

		decided = *req
		return nil
	})
	if err != nil {
		return ApprovalResponse{}, err
	}

	s.log.Info("approval request decided",
		zap.String("request_id", decided.ID.String()),
		zap.String("request_type", decided.RequestType),
		zap.String("status", decided.Status),
		zap.Int64("approver_no", caller.EmployeeNo))
	s.publishDecision(decided)

	return s.enrichOne(ctx, decided), nil
}

// --- Applicant-side operations ---

func (s *approvalService) Amend(ctx context.Context, caller identity.Identity, id string, patch AmendAbsenceDTO) (ApprovalResponse, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return ApprovalResponse{}, err
	}

	var amended model.ApprovalRequest
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.repo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return notFoundOrInternal(findErr)
		}
		if !caller.Owns(req.ApplicantNo) {
			return apperr.New(apperr.CodeForbidden, "only the applicant may amend this request")
		}
		if req.RequestType != model.RequestTypeAbsence {
			return apperr.Newf(apperr.CodeBadRequest, "%s requests cannot be amended", model.RequestTypeLabel(req.RequestType))
		}
		if !req.IsPending() {
			return apperr.Newf(apperr.CodeBadRequest, "approval request is already %s", req.Status)
		}

		if applyErr := applyAbsencePatch(req, patch); applyErr != nil {
			return applyErr
		}

		if saveErr := s.repo.Update(txCtx, req); saveErr != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to amend approval request", saveErr)
		}
		if auditErr := s.writeAudit(txCtx, &caller.EmployeeNo, model.ActionAmendRequest, req); auditErr != nil {
			return auditErr
		}

		amended = *req
		return nil
	})
	if err != nil {
		return ApprovalResponse{}, err
	}

	return s.enrichOne(ctx, amended), nil
}

func (s *approvalService) Cancel(ctx context.Context, caller identity.Identity, id string) error {
	requestID, err := parseRequestID(id)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.repo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return notFoundOrInternal(findErr)
		}
		if !caller.Owns(req.ApplicantNo) {
			return apperr.New(apperr.CodeForbidden, "only the applicant may cancel this request")
		}
		if !req.IsPending() {
			return apperr.Newf(apperr.CodeBadRequest, "approval request is already %s", req.Status)
		}

		if delErr := s.repo.Delete(txCtx, req.ID); delErr != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to cancel approval request", delErr)
		}
		return s.writeAudit(txCtx, &caller.EmployeeNo, model.ActionCancelRequest, req)
	})
}

// --- Leave lookups for the attendance core ---

func (s *approvalService) HasApprovedLeave(ctx context.Context, applicantNo int64, day time.Time) (bool, error) {
	leave, err := s.repo.FindApprovedLeaveOn(ctx, applicantNo, day)
	if err != nil {
		return false, apperr.Wrap(apperr.CodeInternal, "leave lookup failed", err)
	}
	return leave != nil, nil
}

func (s *approvalService) ApprovedLeaveType(ctx context.Context, applicantNo int64, day time.Time) (*string, error) {
	leave, err := s.repo.FindApprovedLeaveOn(ctx, applicantNo, day)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "leave lookup failed", err)
	}
	if leave == nil {
		return nil, nil
	}
	switch leave.RequestType {
	case model.RequestTypeVacation:
		return leave.VacationType, nil
	case model.RequestTypeAbsence:
		return leave.AbsenceType, nil
	default:
		return nil, nil
	}
}

// --- Helpers ---

func (s *approvalService) enrichOne(ctx context.Context, req model.ApprovalRequest) ApprovalResponse {
	names := s.names.ResolveNames(ctx, employeeNosOf([]model.ApprovalRequest{req}))
	return toApprovalResponse(req, names)
}

func (s *approvalService) enrichPage(ctx context.Context, requests []model.ApprovalRequest) []ApprovalResponse {
	names := s.names.ResolveNames(ctx, employeeNosOf(requests))
	result := make([]ApprovalResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toApprovalResponse(r, names))
	}
	return result
}

func (s *approvalService) writeAudit(ctx context.Context, employeeNo *int64, action string, req *model.ApprovalRequest) error {
	details, _ := json.Marshal(map[string]interface{}{
		"request_type": req.RequestType,
		"applicant_no": req.ApplicantNo,
		"status":       req.Status,
	})
	entry := &model.AuditLog{
		EmployeeNo: employeeNo,
		Action:     action,
		EntityID:   req.ID.String(),
		EntityName: req.RequestType,
		Details:    string(details),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to write audit log", err)
	}
	return nil
}

func (s *approvalService) publishDecision(req model.ApprovalRequest) {
	if s.notifier == nil {
		return
	}
	event, err := json.Marshal(map[string]interface{}{
		"event":        "approval_decided",
		"request_id":   req.ID.String(),
		"request_type": req.RequestType,
		"status":       req.Status,
		"applicant_no": req.ApplicantNo,
	})
	if err != nil {
		return
	}
	s.notifier.Publish(event)
}

func applyAbsencePatch(req *model.ApprovalRequest, patch AmendAbsenceDTO) error {
	if patch.Title != nil {
		req.Title = *patch.Title
	}
	if patch.Reason != nil {
		req.Reason = *patch.Reason
	}
	if patch.Urgency != nil {
		req.Urgency = patch.Urgency
	}
	if patch.StartDate != nil {
		start, err := parseDate(*patch.StartDate, "start_date")
		if err != nil {
			return err
		}
		req.StartDate = &start
	}
	if patch.EndDate != nil {
		end, err := parseDate(*patch.EndDate, "end_date")
		if err != nil {
			return err
		}
		req.EndDate = &end
	}
	if req.HasDateRange() && req.EndDate.Before(*req.StartDate) {
		return apperr.New(apperr.CodeBadRequest, "end_date must not precede start_date")
	}
	if patch.StartTime != nil {
		req.StartTime = patch.StartTime
	}
	if patch.EndTime != nil {
		req.EndTime = patch.EndTime
	}
	return nil
}

func parseRequestID(id string) (uuid.UUID, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.CodeBadRequest, "invalid approval request id", err)
	}
	return requestID, nil
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, "approval request not found")
	}
	return apperr.Wrap(apperr.CodeInternal, "approval request lookup failed", err)
}
