package service

import (
	"time"

	"hrcore/internal/model"
	"hrcore/pkg/apperr"
)

// --- Request DTOs ---

type CreateVacationDTO struct {
	ApplicantNo  int64  `json:"applicant_no" binding:"required"`
	VacationID   int64  `json:"vacation_id" binding:"required"`
	VacationType string `json:"vacation_type" binding:"required"`
	StartDate    string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate      string `json:"end_date" binding:"required"`
	Title        string `json:"title"`
	Reason       string `json:"reason"`
}

type CreateCertificateDTO struct {
	ApplicantNo     int64  `json:"applicant_no" binding:"required"`
	CertificateID   int64  `json:"certificate_id" binding:"required"`
	CertificateType string `json:"certificate_type" binding:"required"`
	Title           string `json:"title"`
	Reason          string `json:"reason"`
}

type CreateAbsenceDTO struct {
	ApplicantNo int64  `json:"applicant_no" binding:"required"`
	AbsenceID   int64  `json:"absence_id" binding:"required"`
	AbsenceType string `json:"absence_type" binding:"required"`
	Urgency     string `json:"urgency"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`
	Title       string `json:"title"`
	Reason      string `json:"reason"`
}

// AmendAbsenceDTO patches a still-pending absence request. Nil fields are
// left untouched.
type AmendAbsenceDTO struct {
	Title     *string `json:"title"`
	Reason    *string `json:"reason"`
	Urgency   *string `json:"urgency"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type RejectDTO struct {
	Comment string `json:"comment"`
}

type ApprovalFilter struct {
	Status string // PENDING, APPROVED, REJECTED or empty for all
	Page   int
	Limit  int
}

// --- Response DTO ---

type ApprovalResponse struct {
	ID                  string  `json:"id"`
	RequestType         string  `json:"request_type"`
	Status              string  `json:"status"`
	ApplicantNo         int64   `json:"applicant_no"`
	ApplicantName       string  `json:"applicant_name"`
	ApplicantDepartment string  `json:"applicant_department"`
	ApproverNo          *int64  `json:"approver_no"`
	ApproverName        string  `json:"approver_name"`
	Title               string  `json:"title"`
	Reason              string  `json:"reason"`
	RejectComment       string  `json:"reject_comment,omitempty"`
	RequestedAt         string  `json:"requested_at"`
	ProcessedAt         *string `json:"processed_at"`

	VacationID      *int64  `json:"vacation_id,omitempty"`
	VacationType    *string `json:"vacation_type,omitempty"`
	StartDate       *string `json:"start_date,omitempty"`
	EndDate         *string `json:"end_date,omitempty"`
	CertificateID   *int64  `json:"certificate_id,omitempty"`
	CertificateType *string `json:"certificate_type,omitempty"`
	AbsenceID       *int64  `json:"absence_id,omitempty"`
	AbsenceType     *string `json:"absence_type,omitempty"`
	Urgency         *string `json:"urgency,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
}

const unknownName = "unknown"

// toApprovalResponse renders one aggregate, filling display names from the
// already-resolved page map. Names stay derived data, never aggregate fields.
func toApprovalResponse(a model.ApprovalRequest, names map[int64]DisplayInfo) ApprovalResponse {
	resp := ApprovalResponse{
		ID:            a.ID.String(),
		RequestType:   a.RequestType,
		Status:        a.Status,
		ApplicantNo:   a.ApplicantNo,
		ApplicantName: unknownName,
		ApproverNo:    a.ApproverNo,
		Title:         a.Title,
		Reason:        a.Reason,
		RejectComment: a.RejectComment,
		RequestedAt:   a.RequestedAt.Format(time.RFC3339),

		VacationID:      a.VacationID,
		VacationType:    a.VacationType,
		CertificateID:   a.CertificateID,
		CertificateType: a.CertificateType,
		AbsenceID:       a.AbsenceID,
		AbsenceType:     a.AbsenceType,
		Urgency:         a.Urgency,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
	}

	if info, ok := names[a.ApplicantNo]; ok {
		resp.ApplicantName = info.DisplayName
		resp.ApplicantDepartment = info.DepartmentName
	}
	if a.ApproverNo != nil {
		resp.ApproverName = unknownName
		if info, ok := names[*a.ApproverNo]; ok {
			resp.ApproverName = info.DisplayName
		}
	}

	if a.ProcessedAt != nil {
		s := a.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	if a.StartDate != nil {
		s := a.StartDate.Format("2006-01-02")
		resp.StartDate = &s
	}
	if a.EndDate != nil {
		s := a.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}

	return resp
}

// employeeNosOf collects the applicant and approver numbers of a result page
// for batch name resolution.
func employeeNosOf(requests []model.ApprovalRequest) []int64 {
	nos := make([]int64, 0, len(requests)*2)
	for _, r := range requests {
		nos = append(nos, r.ApplicantNo)
		if r.ApproverNo != nil {
			nos = append(nos, *r.ApproverNo)
		}
	}
	return nos
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Newf(apperr.CodeBadRequest, "invalid %s: expected YYYY-MM-DD", field)
	}
	return t, nil
}
