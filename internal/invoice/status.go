package invoice

import "fmt"

// Status is the lifecycle state of an invoice.
//
// Allowed transitions are centralized in Transition - no other code
// mutates a status directly.
type Status string

const (
	// StatusIssued is the initial state of every persisted invoice.
	StatusIssued Status = "ISSUED"

	// StatusPaid marks an invoice as settled. Terminal for the sweep.
	StatusPaid Status = "PAID"

	// StatusOverdue marks an invoice whose due date has passed unpaid.
	StatusOverdue Status = "OVERDUE"

	// StatusCancelled marks an invoice voided by an operator. Terminal.
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a string into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusIssued, StatusPaid, StatusOverdue, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Terminal reports whether no further automatic transition applies.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Event is a lifecycle event applied to an invoice status.
type Event string

const (
	// EventMarkPaid records payment of an issued or overdue invoice.
	EventMarkPaid Event = "mark_paid"

	// EventDueDatePassed is raised by the overdue sweep when the due
	// date lies strictly in the past.
	EventDueDatePassed Event = "due_date_passed"

	// EventCancel voids an invoice that has not been paid.
	EventCancel Event = "cancel"
)

// Transition applies ev to current and returns the resulting status.
//
// The legality table:
//
//	ISSUED  + mark_paid       -> PAID
//	ISSUED  + due_date_passed -> OVERDUE
//	OVERDUE + mark_paid       -> PAID
//	ISSUED/OVERDUE + cancel   -> CANCELLED
//	PAID    + due_date_passed -> PAID (no-op; PAID absorbs overdue)
//
// Every other pair is rejected with ErrIllegalTransition. PAID and
// CANCELLED are terminal for manual events as well as for the sweep.
func Transition(current Status, ev Event) (Status, error) {
	switch ev {
	case EventMarkPaid:
		if current == StatusIssued || current == StatusOverdue {
			return StatusPaid, nil
		}
	case EventDueDatePassed:
		switch current {
		case StatusIssued, StatusOverdue:
			return StatusOverdue, nil
		case StatusPaid:
			// Paid invoices are never regressed by overdue detection.
			return StatusPaid, nil
		}
	case EventCancel:
		if current == StatusIssued || current == StatusOverdue {
			return StatusCancelled, nil
		}
	default:
		return "", fmt.Errorf("unknown event %q", ev)
	}
	return "", fmt.Errorf("%w: %s + %s", ErrIllegalTransition, current, ev)
}

// EventFor maps a desired target status to the event that reaches it.
// Used by manual status updates, which arrive as a target state rather
// than an event.
func EventFor(target Status) (Event, error) {
	switch target {
	case StatusPaid:
		return EventMarkPaid, nil
	case StatusOverdue:
		return EventDueDatePassed, nil
	case StatusCancelled:
		return EventCancel, nil
	case StatusIssued:
		return "", fmt.Errorf("%w: no event re-issues an invoice", ErrIllegalTransition)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, target)
}
