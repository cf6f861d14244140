package model

import (
	"time"

	"github.com/google/uuid"
)

// Approval workflow actions
const (
	ActionCreateApprovalRequest = "CREATE_APPROVAL_REQUEST"
	ActionApproveRequest        = "APPROVE_REQUEST"
	ActionRejectRequest         = "REJECT_REQUEST"
	ActionAmendRequest          = "AMEND_REQUEST"
	ActionCancelRequest         = "CANCEL_REQUEST"
)

// AuditLog tracks Who, What, and When for every lifecycle change of an
// approval request
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeNo *int64    `gorm:"index" json:"employee_no"` // nullable gracefully if automated
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
