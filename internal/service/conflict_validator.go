package service

import (
	"context"

	"hrcore/internal/gateway"
	"hrcore/internal/model"
	"hrcore/internal/repository"
	"hrcore/pkg/apperr"
)

// ConflictValidator runs the per-type duplicate/overlap rules before a
// request is accepted.
type ConflictValidator struct {
	repo         repository.ApprovalRepository
	certificates gateway.CertificateGateway
}

func NewConflictValidator(repo repository.ApprovalRepository, certificates gateway.CertificateGateway) *ConflictValidator {
	return &ConflictValidator{repo: repo, certificates: certificates}
}

// Validate returns nil when the candidate may be accepted, a Conflict error
// when a business rule rejects it, and an Internal error when a required
// lookup failed (fail closed).
func (v *ConflictValidator) Validate(ctx context.Context, candidate *model.ApprovalRequest) error {
	switch candidate.RequestType {
	case model.RequestTypeVacation, model.RequestTypeAbsence:
		return v.validateDateRange(ctx, candidate)
	case model.RequestTypeCertificate:
		return v.validateCertificate(ctx, candidate)
	default:
		return nil
	}
}

func (v *ConflictValidator) validateDateRange(ctx context.Context, candidate *model.ApprovalRequest) error {
	if !candidate.HasDateRange() {
		return apperr.New(apperr.CodeBadRequest, "start and end date are required")
	}

	colliding, err := v.repo.FindOverlapping(ctx, candidate.ApplicantNo, *candidate.StartDate, *candidate.EndDate)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "overlap lookup failed", err)
	}
	if len(colliding) == 0 {
		return nil
	}

	// Earliest-requested collider is the one named in the message.
	earliest := colliding[0]
	return apperr.Newf(apperr.CodeConflict,
		"the requested period overlaps an existing %s from %s to %s",
		model.RequestTypeLabel(earliest.RequestType),
		earliest.StartDate.Format("2006-01-02"),
		earliest.EndDate.Format("2006-01-02"))
}

func (v *ConflictValidator) validateCertificate(ctx context.Context, candidate *model.ApprovalRequest) error {
	if candidate.CertificateType == nil {
		return apperr.New(apperr.CodeBadRequest, "certificate type is required")
	}
	certificateType := *candidate.CertificateType

	duplicate, err := v.repo.HasPendingCertificate(ctx, candidate.ApplicantNo, certificateType)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "pending certificate lookup failed", err)
	}
	if duplicate {
		return apperr.Newf(apperr.CodeConflict,
			"a pending certificate request of type %s already exists", certificateType)
	}

	valid, err := v.certificates.HasValidCertificate(ctx, candidate.ApplicantNo, certificateType)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "certificate validity check failed", err)
	}
	if valid {
		return apperr.Newf(apperr.CodeConflict,
			"a valid certificate of type %s already exists", certificateType)
	}

	return nil
}
