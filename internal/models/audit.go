package models

import "time"

// Audit actions recorded for mutating operations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionRegister       = "REGISTER"
	AuditActionAccountCreate  = "ACCOUNT_CREATE"
	AuditActionAccountUpdate  = "ACCOUNT_UPDATE"
	AuditActionAccountDelete  = "ACCOUNT_DELETE"
	AuditActionAccountApprove = "ACCOUNT_APPROVE"
	AuditActionAccountSuspend = "ACCOUNT_SUSPEND"
	AuditActionTaskCreate     = "TASK_CREATE"
	AuditActionTaskUpdate     = "TASK_UPDATE"
	AuditActionLeaveApply     = "LEAVE_APPLY"
	AuditActionLeaveReview    = "LEAVE_REVIEW"
	AuditActionReportGenerate = "REPORT_GENERATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actorId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
