package models

// RequestKind distinguishes the two request families sharing one lifecycle.
type RequestKind string

// RequestKind constants.
const (
	KindLeave    RequestKind = "leave"
	KindOvertime RequestKind = "overtime"
)

// RequestStatus is the lifecycle status of a leave or overtime request.
type RequestStatus string

// RequestStatus constants.
const (
	StatusPending RequestStatus = "PENDING"
	// StatusPendingAdmin is a legacy value from a retired two-step ratification flow.
	// It is read as an alias of PENDING and never written.
	StatusPendingAdmin RequestStatus = "PENDING_ADMIN"
	StatusApproved     RequestStatus = "APPROVED"
	StatusRejected     RequestStatus = "REJECTED"
	StatusCancelled    RequestStatus = "CANCELLED"
)

// PendingLikeStatuses lists the statuses that mean "awaiting decision".
func PendingLikeStatuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusPendingAdmin}
}

// IsPendingLike reports whether s still awaits a decision.
func (s RequestStatus) IsPendingLike() bool {
	return s == StatusPending || s == StatusPendingAdmin
}

// IsTerminalFor reports whether s is a decision outcome for the given request kind.
// CANCELLED only exists for leave.
func (s RequestStatus) IsTerminalFor(kind RequestKind) bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusCancelled:
		return kind == KindLeave
	}
	return false
}
