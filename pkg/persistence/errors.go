// Package persistence provides standardized error types for storage operations.
package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrRuleNotFound indicates an automation rule was not found.
	ErrRuleNotFound = errors.New("automation rule not found")

	// ErrWorkflowNotFound indicates a workflow was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTaskNotFound indicates a task was not found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotificationNotFound indicates a notification was not found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrContactNotFound indicates a contact was not found.
	ErrContactNotFound = errors.New("contact not found")

	// ErrDealNotFound indicates a deal was not found.
	ErrDealNotFound = errors.New("deal not found")

	// ErrSchedulingLinkNotFound indicates a scheduling link was not found by
	// id or slug, or is no longer active.
	ErrSchedulingLinkNotFound = errors.New("scheduling link not found")

	// ErrSlotTaken indicates another meeting already holds the requested
	// start time for the same scheduling link. Recoverable: the caller
	// should re-prompt slot selection.
	ErrSlotTaken = errors.New("slot already taken")
)

// IsNotFound reports whether err is any of the domain not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrContactNotFound) ||
		errors.Is(err, ErrDealNotFound) ||
		errors.Is(err, ErrSchedulingLinkNotFound)
}

// IsSlotTaken reports whether err indicates a double-booking conflict.
func IsSlotTaken(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}
