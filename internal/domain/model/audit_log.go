//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Audit actions recorded by admin operations.
const (
	AuditActionAssignLawyer = "assign_lawyer"
	AuditActionChangeRole   = "change_role"
	AuditActionDeleteUser   = "delete_user"
	AuditActionDeleteReport = "delete_report"
)

// AuditLog records an administrative action.
type AuditLog struct {
	ID         string    `json:"id"                  db:"id"`
	ActorID    string    `json:"actor_id"            db:"actor_id"`
	ActorEmail string    `json:"actor_email"         db:"actor_email"`
	Action     string    `json:"action"              db:"action"`
	ReportID   *string   `json:"report_id,omitempty" db:"report_id"`
	Detail     string    `json:"detail"              db:"detail"`
	CreatedAt  time.Time `json:"created_at"          db:"created_at"`
}

// CreateAuditLogRequest records an action.
type CreateAuditLogRequest struct {
	ActorID    string
	ActorEmail string
	Action     string
	ReportID   *string
	Detail     string
}
