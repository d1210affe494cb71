package models

import "time"

// LeaveStatus enumerates leave request states.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "Pending"
	LeaveStatusApproved LeaveStatus = "Approved"
	LeaveStatusRejected LeaveStatus = "Rejected"
)

// IsDecision reports whether s is a valid review outcome.
func (s LeaveStatus) IsDecision() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

// LeaveRequest is an account's absence request.
type LeaveRequest struct {
	ID           string      `db:"id" json:"id"`
	AccountID    string      `db:"account_id" json:"userId"`
	Reason       string      `db:"reason" json:"reason"`
	StartDate    Date        `db:"start_date" json:"startDate"`
	EndDate      Date        `db:"end_date" json:"endDate"`
	Status       LeaveStatus `db:"status" json:"status"`
	AdminComment *string     `db:"admin_comment" json:"adminComment"`
	ReviewedBy   *string     `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time  `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// LeaveView is a leave request with its owner, null once the owner is deleted.
type LeaveView struct {
	LeaveRequest
	OwnerName  *string `db:"owner_name" json:"-"`
	OwnerEmail *string `db:"owner_email" json:"-"`

	Owner *AccountRef `db:"-" json:"owner"`
}

// Resolve fills Owner from the joined columns.
func (v *LeaveView) Resolve() {
	v.Owner = nil
	if v.OwnerName != nil {
		ref := &AccountRef{ID: v.AccountID, Name: *v.OwnerName}
		if v.OwnerEmail != nil {
			ref.Email = *v.OwnerEmail
		}
		v.Owner = ref
	}
}
