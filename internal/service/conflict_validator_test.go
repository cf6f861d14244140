package service

import (
	"context"
	"errors"
	"testing"

	"hrcore/internal/model"
	"hrcore/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidatorFixture() (*ConflictValidator, *memoryApprovalStore, *mockCertificateGateway) {
	store := newMemoryApprovalStore()
	certificates := &mockCertificateGateway{}
	return NewConflictValidator(store, certificates), store, certificates
}

func TestValidate_OverlapBoundariesAreInclusive(t *testing.T) {
	validator, store, _ := newValidatorFixture()
	store.seed(model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		Status:      model.StatusApproved,
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	})

	cases := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{"starts inside existing interval", "2026-01-11", "2026-01-15", true},
		{"touches existing end day", "2026-01-12", "2026-01-14", true},
		{"contains existing interval", "2026-01-09", "2026-01-13", true},
		{"starts day after existing end", "2026-01-13", "2026-01-15", false},
		{"ends day before existing start", "2026-01-05", "2026-01-09", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := &model.ApprovalRequest{
				RequestType: model.RequestTypeAbsence,
				ApplicantNo: 100,
				StartDate:   datePtr(tc.start),
				EndDate:     datePtr(tc.end),
			}
			err := validator.Validate(context.Background(), candidate)
			if tc.conflict {
				assert.True(t, apperr.Is(err, apperr.CodeConflict))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_OverlapIsPerApplicant(t *testing.T) {
	validator, store, _ := newValidatorFixture()
	store.seed(model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 200,
		Status:      model.StatusApproved,
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	})

	candidate := &model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	}
	assert.NoError(t, validator.Validate(context.Background(), candidate))
}

func TestValidate_RejectedRequestsDoNotBlock(t *testing.T) {
	validator, store, _ := newValidatorFixture()
	store.seed(model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		Status:      model.StatusRejected,
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	})

	candidate := &model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	}
	assert.NoError(t, validator.Validate(context.Background(), candidate))
}

func TestValidate_ConflictNamesEarliestCollider(t *testing.T) {
	validator, store, _ := newValidatorFixture()
	store.seed(model.ApprovalRequest{
		RequestType: model.RequestTypeAbsence,
		ApplicantNo: 100,
		Status:      model.StatusPending,
		RequestedAt: date("2026-01-02"),
		StartDate:   datePtr("2026-01-11"),
		EndDate:     datePtr("2026-01-11"),
	})
	store.seed(model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		Status:      model.StatusPending,
		RequestedAt: date("2026-01-01"),
		StartDate:   datePtr("2026-01-10"),
		EndDate:     datePtr("2026-01-12"),
	})

	candidate := &model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
		StartDate:   datePtr("2026-01-11"),
		EndDate:     datePtr("2026-01-11"),
	}
	err := validator.Validate(context.Background(), candidate)

	require.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Contains(t, err.Error(), "vacation request from 2026-01-10 to 2026-01-12")
}

func TestValidate_CertificateDuplicatePending(t *testing.T) {
	validator, store, _ := newValidatorFixture()
	store.seed(model.ApprovalRequest{
		RequestType:     model.RequestTypeCertificate,
		ApplicantNo:     100,
		Status:          model.StatusPending,
		CertificateType: strPtr("EMPLOYMENT"),
	})

	candidate := &model.ApprovalRequest{
		RequestType:     model.RequestTypeCertificate,
		ApplicantNo:     100,
		CertificateType: strPtr("EMPLOYMENT"),
	}
	err := validator.Validate(context.Background(), candidate)

	require.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Contains(t, err.Error(), "pending certificate request")
}

func TestValidate_CertificateAlreadyValidInCollaborator(t *testing.T) {
	validator, _, certificates := newValidatorFixture()
	certificates.HasValidCertificateFn = func(ctx context.Context, applicantNo int64, certificateType string) (bool, error) {
		assert.Equal(t, int64(100), applicantNo)
		assert.Equal(t, "EMPLOYMENT", certificateType)
		return true, nil
	}

	candidate := &model.ApprovalRequest{
		RequestType:     model.RequestTypeCertificate,
		ApplicantNo:     100,
		CertificateType: strPtr("EMPLOYMENT"),
	}
	assert.True(t, apperr.Is(validator.Validate(context.Background(), candidate), apperr.CodeConflict))
}

func TestValidate_CertificateLookupFailsClosed(t *testing.T) {
	validator, _, certificates := newValidatorFixture()
	certificates.HasValidCertificateFn = func(ctx context.Context, applicantNo int64, certificateType string) (bool, error) {
		return false, errors.New("certificate service unavailable")
	}

	candidate := &model.ApprovalRequest{
		RequestType:     model.RequestTypeCertificate,
		ApplicantNo:     100,
		CertificateType: strPtr("EMPLOYMENT"),
	}
	err := validator.Validate(context.Background(), candidate)

	assert.True(t, apperr.Is(err, apperr.CodeInternal), "an unverifiable candidate must not be accepted")
}

func TestValidate_MissingDateRange(t *testing.T) {
	validator, _, _ := newValidatorFixture()

	candidate := &model.ApprovalRequest{
		RequestType: model.RequestTypeVacation,
		ApplicantNo: 100,
	}
	assert.True(t, apperr.Is(validator.Validate(context.Background(), candidate), apperr.CodeBadRequest))
}
