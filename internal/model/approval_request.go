package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRequestType enum constants
const (
	RequestTypeVacation    = "VACATION"
	RequestTypeCertificate = "CERTIFICATE"
	RequestTypeAbsence     = "ABSENCE"
)

// ApprovalRequest status enum constants. Once a request leaves PENDING it is
// terminal — no transition ever writes APPROVED or REJECTED twice.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// RequestTypeLabel returns the human-readable name used in conflict messages.
func RequestTypeLabel(requestType string) string {
	switch requestType {
	case RequestTypeVacation:
		return "vacation request"
	case RequestTypeCertificate:
		return "certificate request"
	case RequestTypeAbsence:
		return "absence request"
	default:
		return "approval request"
	}
}

// ApprovalRequest is the aggregate tracking one human approval decision for a
// vacation, certificate, or absence submission. Exactly one of the
// type-specific reference bundles is populated, selected by RequestType.
type ApprovalRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestType string    `gorm:"type:varchar(20);not null;index" json:"request_type"` // VACATION, CERTIFICATE, ABSENCE
	ApplicantNo int64     `gorm:"not null;index" json:"applicant_no"`
	ApproverNo  *int64    `gorm:"index" json:"approver_no"` // null while PENDING, except CERTIFICATE (pre-assigned)
	Status      string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	Title         string `gorm:"type:varchar(255)" json:"title"`
	Reason        string `gorm:"type:text" json:"reason"`
	RejectComment string `gorm:"type:text" json:"reject_comment"` // set only on rejection

	RequestedAt time.Time  `gorm:"not null;index" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at"` // set exactly once, on the terminal transition

	// Vacation bundle
	VacationID   *int64     `json:"vacation_id"`
	VacationType *string    `gorm:"type:varchar(30)" json:"vacation_type"`
	StartDate    *time.Time `gorm:"type:date;index" json:"start_date"` // shared with the absence bundle
	EndDate      *time.Time `gorm:"type:date;index" json:"end_date"`

	// Certificate bundle
	CertificateID   *int64  `json:"certificate_id"`
	CertificateType *string `gorm:"type:varchar(30)" json:"certificate_type"`

	// Absence bundle
	AbsenceID   *int64  `json:"absence_id"`
	AbsenceType *string `gorm:"type:varchar(30)" json:"absence_type"`
	Urgency     *string `gorm:"type:varchar(20)" json:"urgency"`
	StartTime   *string `gorm:"type:varchar(5)" json:"start_time"` // HH:MM
	EndTime     *string `gorm:"type:varchar(5)" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending reports whether the request still accepts a transition.
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == StatusPending
}

// HasDateRange reports whether both interval bounds are set. Only vacation
// and absence requests carry an interval.
func (r *ApprovalRequest) HasDateRange() bool {
	return r.StartDate != nil && r.EndDate != nil
}
