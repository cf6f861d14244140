package service

import (
	"context"

	"hrcore/internal/gateway"
	"hrcore/internal/model"
	"hrcore/pkg/apperr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dispatchEntry holds the compensating calls for one request type. Adding a
// new approval type means adding a table entry, not editing conditionals.
type dispatchEntry struct {
	onApprove func(ctx context.Context, req *model.ApprovalRequest) error
	onReject  func(ctx context.Context, req *model.ApprovalRequest) error
}

// Dispatcher invokes the compensating call in the originating domain service
// after a terminal transition. Callers treat a returned error as grounds to
// roll back the transition itself.
type Dispatcher struct {
	table     map[string]dispatchEntry
	directory gateway.DirectoryGateway
	log       *zap.Logger
}

func NewDispatcher(
	vacations gateway.VacationGateway,
	certificates gateway.CertificateGateway,
	absences gateway.AbsenceGateway,
	directory gateway.DirectoryGateway,
	log *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{directory: directory, log: log}
	d.table = map[string]dispatchEntry{
		model.RequestTypeVacation: {
			onApprove: func(ctx context.Context, req *model.ApprovalRequest) error {
				return d.applyBalanceChange(ctx, vacations, req, gateway.OutcomeApproved)
			},
			onReject: func(ctx context.Context, req *model.ApprovalRequest) error {
				return d.applyBalanceChange(ctx, vacations, req, gateway.OutcomeRejected)
			},
		},
		model.RequestTypeCertificate: {
			onApprove: func(ctx context.Context, req *model.ApprovalRequest) error {
				if req.CertificateID == nil {
					d.warnMissingReference(req, "certificate_id")
					return nil
				}
				return certificates.SetApproved(ctx, *req.CertificateID, derefInt64(req.ApproverNo), d.approverName(ctx, req))
			},
			onReject: func(ctx context.Context, req *model.ApprovalRequest) error {
				if req.CertificateID == nil {
					d.warnMissingReference(req, "certificate_id")
					return nil
				}
				return certificates.SetRejected(ctx, *req.CertificateID, req.RejectComment, derefInt64(req.ApproverNo), d.approverName(ctx, req))
			},
		},
		model.RequestTypeAbsence: {
			onApprove: func(ctx context.Context, req *model.ApprovalRequest) error {
				if req.AbsenceID == nil {
					d.warnMissingReference(req, "absence_id")
					return nil
				}
				return absences.Approve(ctx, *req.AbsenceID, derefInt64(req.ApproverNo))
			},
			onReject: func(ctx context.Context, req *model.ApprovalRequest) error {
				if req.AbsenceID == nil {
					d.warnMissingReference(req, "absence_id")
					return nil
				}
				return absences.Reject(ctx, *req.AbsenceID, derefInt64(req.ApproverNo), req.RejectComment)
			},
		},
	}
	return d
}

// Dispatch runs the compensating call for the request's type and outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req *model.ApprovalRequest, outcome gateway.Outcome) error {
	entry, ok := d.table[req.RequestType]
	if !ok {
		d.log.Warn("no dispatch entry for request type",
			zap.String("request_id", req.ID.String()),
			zap.String("request_type", req.RequestType))
		return nil
	}

	var call func(context.Context, *model.ApprovalRequest) error
	if outcome == gateway.OutcomeApproved {
		call = entry.onApprove
	} else {
		call = entry.onReject
	}

	if err := call(ctx, req); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "side-effect dispatch failed", err)
	}
	return nil
}

func (d *Dispatcher) applyBalanceChange(ctx context.Context, vacations gateway.VacationGateway, req *model.ApprovalRequest, outcome gateway.Outcome) error {
	if req.VacationID == nil {
		d.warnMissingReference(req, "vacation_id")
		return nil
	}

	change := gateway.BalanceChange{
		VacationID:  *req.VacationID,
		Outcome:     outcome,
		ApplicantNo: req.ApplicantNo,
		Days:        leaveDays(req),
	}
	if req.VacationType != nil {
		change.VacationType = *req.VacationType
	}
	if req.StartDate != nil {
		change.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		change.EndDate = *req.EndDate
	}
	if outcome == gateway.OutcomeRejected {
		change.RejectComment = req.RejectComment
	}

	return vacations.ApplyBalanceChange(ctx, change)
}

// approverName resolves the approver's display name for the certificate
// service. Directory degradation must not block the decision, so failures
// fall back to "unknown".
func (d *Dispatcher) approverName(ctx context.Context, req *model.ApprovalRequest) string {
	if req.ApproverNo == nil {
		return "unknown"
	}
	users, err := d.directory.GetUsers(ctx, []int64{*req.ApproverNo})
	if err != nil || len(users) == 0 {
		d.log.Warn("approver name resolution failed",
			zap.Int64("approver_no", *req.ApproverNo),
			zap.Error(err))
		return "unknown"
	}
	return users[0].DisplayName
}

func (d *Dispatcher) warnMissingReference(req *model.ApprovalRequest, field string) {
	d.log.Warn("skipping side effect: type-specific reference is missing",
		zap.String("request_id", req.ID.String()),
		zap.String("request_type", req.RequestType),
		zap.String("missing_field", field))
}

// leaveDays is the inclusive day count of the request's interval.
func leaveDays(req *model.ApprovalRequest) decimal.Decimal {
	if !req.HasDateRange() {
		return decimal.Zero
	}
	days := int64(req.EndDate.Sub(*req.StartDate).Hours()/24) + 1
	if days < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(days)
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
