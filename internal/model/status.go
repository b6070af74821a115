package model

// Status is the approval-dimension status of a WFH request entry. The
// request-level overall status shares the same domain plus the synthetic
// Reviewed value, which is never assigned to an individual entry.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusApproved         Status = "Approved"
	StatusRejected         Status = "Rejected"
	StatusCancelled        Status = "Cancelled"
	StatusReviewed         Status = "Reviewed" // request-level only: entries disagree
	StatusWithdrawn        Status = "Withdrawn"
	StatusPendingWithdrawn Status = "Pending Withdrawal"
	StatusAutoRejected     Status = "Auto Rejected"
	StatusAcknowledged     Status = "Acknowledged"
)

// NotificationStatus describes why the request last changed, for the unseen
// badge. It is orthogonal to Status and the two are never conflated.
type NotificationStatus string

const (
	NotificationDelivered     NotificationStatus = "Delivered"
	NotificationSeen          NotificationStatus = "Seen"
	NotificationEdited        NotificationStatus = "Edited"
	NotificationWithdrawn     NotificationStatus = "Withdrawn"
	NotificationSelfWithdrawn NotificationStatus = "Self-Withdrawn"
	NotificationCancelled     NotificationStatus = "Cancelled"
	NotificationAcknowledged  NotificationStatus = "Acknowledged"
	NotificationAutoRejected  NotificationStatus = "Auto Rejected"
)

// DelegateStatus is the status of a delegation proposal. Seen is only ever
// assigned to the notification dimension of a delegate record.
type DelegateStatus string

const (
	DelegatePending  DelegateStatus = "pending"
	DelegateAccepted DelegateStatus = "accepted"
	DelegateRejected DelegateStatus = "rejected"
	DelegateSeen     DelegateStatus = "seen"
)

// AggregateStatus derives a request's overall status from the statuses of all
// its current entries: a single distinct status wins outright, any mix yields
// Reviewed. Callers must pass the full committed entry set of the request.
func AggregateStatus(statuses []Status) Status {
	distinct := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		distinct[s] = struct{}{}
	}
	if len(distinct) > 1 {
		return StatusReviewed
	}
	for s := range distinct {
		return s
	}
	return StatusPending
}
