package domain

import "strings"

// Status labels an invitation lifecycle state or a thread annotation.
//
// Primary statuses (pending, accepted, rejected) may be the authoritative
// status of an invitation record. Secondary statuses (interview, hired,
// follow_up) only ever appear inside a record's last update while the
// authoritative status stays accepted.
type Status string

const (
	// StatusUnspecified represents an absent status value.
	StatusUnspecified Status = ""
	// StatusPending indicates an invitation awaiting a decision.
	StatusPending Status = "pending"
	// StatusAccepted indicates an accepted invitation.
	StatusAccepted Status = "accepted"
	// StatusRejected indicates a rejected invitation. Rejection is terminal.
	StatusRejected Status = "rejected"
	// StatusInterview annotates an accepted invitation with a scheduled interview.
	StatusInterview Status = "interview"
	// StatusHired annotates an accepted invitation with a hiring decision.
	StatusHired Status = "hired"
	// StatusFollowUp annotates an accepted invitation with a follow-up note.
	StatusFollowUp Status = "follow_up"
)

// ParseStatus canonicalizes a status label.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return StatusPending, true
	case "accepted":
		return StatusAccepted, true
	case "rejected":
		return StatusRejected, true
	case "interview":
		return StatusInterview, true
	case "hired":
		return StatusHired, true
	case "follow_up":
		return StatusFollowUp, true
	default:
		return StatusUnspecified, false
	}
}

// IsPrimary reports whether the status may serve as a record's authoritative
// status. Secondary annotations and unrecognized values are not primary.
func (s Status) IsPrimary() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// IsSecondary reports whether the status is an annotation-only value.
func (s Status) IsSecondary() bool {
	switch s {
	case StatusInterview, StatusHired, StatusFollowUp:
		return true
	default:
		return false
	}
}

// Decision describes the outcome of validating a requested status change.
type Decision int

const (
	// DecisionDisallowed indicates the transition violates the lifecycle rules.
	DecisionDisallowed Decision = iota
	// DecisionAllowed indicates the transition may proceed.
	DecisionAllowed
	// DecisionNoOp indicates the record already holds the requested status.
	DecisionNoOp
)

// Transition validates a requested status change against the current
// authoritative status.
//
// Pending records accept only accepted or rejected. Accepted records accept
// rejected plus the secondary annotations. Rejected records accept nothing;
// re-requesting the current primary status is a no-op.
func Transition(from, to Status) Decision {
	switch from {
	case StatusPending:
		switch to {
		case StatusPending:
			return DecisionNoOp
		case StatusAccepted, StatusRejected:
			return DecisionAllowed
		}
		return DecisionDisallowed
	case StatusAccepted:
		switch to {
		case StatusAccepted:
			return DecisionNoOp
		case StatusRejected, StatusInterview, StatusHired, StatusFollowUp:
			return DecisionAllowed
		}
		return DecisionDisallowed
	case StatusRejected:
		if to == StatusRejected {
			return DecisionNoOp
		}
		return DecisionDisallowed
	default:
		return DecisionDisallowed
	}
}

// DefaultMessage returns the canned thread text recorded for a status change
// when the caller supplies no message of their own.
func DefaultMessage(target Status) string {
	switch target {
	case StatusAccepted:
		return "Thank you for the opportunity. I accept this invitation."
	case StatusRejected:
		return "Thank you for considering my application. I regret to inform you that I must decline this opportunity at this time."
	case StatusFollowUp:
		return "I am following up regarding my application. Please let me know if you need any additional information."
	default:
		return "Status updated."
	}
}
