// Package gateway defines the typed remote-call interfaces to the
// collaborating domain services (HR directory, vacation balance, certificate,
// absence) and their HTTP implementations. The orchestrator consumes these
// services but does not implement them.
package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the terminal decision communicated to a domain service.
type Outcome string

const (
	OutcomeApproved Outcome = "APPROVED"
	OutcomeRejected Outcome = "REJECTED"
)

// DirectoryUser is one directory entry returned by the HR directory service.
type DirectoryUser struct {
	EmployeeNo     int64  `json:"employee_no"`
	DisplayName    string `json:"display_name"`
	DepartmentName string `json:"department_name"`
	HRRole         bool   `json:"hr_role"`
}

// DirectoryGateway resolves employee identities to display information.
type DirectoryGateway interface {
	GetUsers(ctx context.Context, employeeNos []int64) ([]DirectoryUser, error)
	// GetHRRoleHolder returns the employee certificate requests are
	// pre-assigned to for approval.
	GetHRRoleHolder(ctx context.Context) (*DirectoryUser, error)
}

// BalanceChange tells the vacation service to deduct (on approval) or restore
// (on rejection) the leave balance covered by a request.
type BalanceChange struct {
	VacationID    int64           `json:"vacation_id"`
	Outcome       Outcome         `json:"outcome"`
	ApplicantNo   int64           `json:"applicant_no"`
	VacationType  string          `json:"vacation_type"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Days          decimal.Decimal `json:"days"`
	RejectComment string          `json:"reject_comment,omitempty"`
}

// VacationGateway applies approved/rejected decisions to leave balances.
type VacationGateway interface {
	ApplyBalanceChange(ctx context.Context, change BalanceChange) error
}

// CertificateGateway finalizes certificate requests and answers validity
// lookups during conflict validation.
type CertificateGateway interface {
	SetApproved(ctx context.Context, certificateID, approverNo int64, approverName string) error
	SetRejected(ctx context.Context, certificateID int64, rejectComment string, approverNo int64, approverName string) error
	HasValidCertificate(ctx context.Context, applicantNo int64, certificateType string) (bool, error)
}

// AbsenceGateway flips an absence's status; the absence service derives the
// work-status record from an approval on its side.
type AbsenceGateway interface {
	Approve(ctx context.Context, absenceID, approverNo int64) error
	Reject(ctx context.Context, absenceID, approverNo int64, rejectComment string) error
}
