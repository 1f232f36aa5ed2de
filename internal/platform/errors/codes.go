// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Invitation errors
	CodeInvitationEmptyID            Code = "INVITATION_EMPTY_ID"
	CodeInvitationEmptyFacultyName   Code = "INVITATION_EMPTY_FACULTY_NAME"
	CodeInvitationEmptyJobTitle      Code = "INVITATION_EMPTY_JOB_TITLE"
	CodeInvitationInvalidPartition   Code = "INVITATION_INVALID_PARTITION"
	CodeInvitationInvalidStatus      Code = "INVITATION_INVALID_STATUS"
	CodeInvitationInvalidTransition  Code = "INVITATION_INVALID_STATUS_TRANSITION"
	CodeInvitationRejectedTerminal   Code = "INVITATION_REJECTED_TERMINAL"
	CodeInvitationSecondaryNotActive Code = "INVITATION_SECONDARY_STATUS_REQUIRES_ACCEPTED"

	// Message errors
	CodeMessageInvalidSender Code = "MESSAGE_INVALID_SENDER"
	CodeMessageEmptyContent  Code = "MESSAGE_EMPTY_CONTENT"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodePersistence   Code = "PERSISTENCE_FAILURE"
)

// Class groups error codes by the caller-facing failure taxonomy.
type Class int

const (
	// ClassInternal covers unclassified failures.
	ClassInternal Class = iota
	// ClassValidation covers malformed or missing input.
	ClassValidation
	// ClassIllegalTransition covers transitions the status engine disallows.
	ClassIllegalTransition
	// ClassNotFound covers references to records absent from the store.
	ClassNotFound
	// ClassPersistence covers backing-store read/write failures.
	ClassPersistence
)

// ErrorClass maps domain codes to failure classes.
func (c Code) ErrorClass() Class {
	switch c {
	// Validation - malformed or missing input
	case CodeInvitationEmptyID,
		CodeInvitationEmptyFacultyName,
		CodeInvitationEmptyJobTitle,
		CodeInvitationInvalidPartition,
		CodeInvitationInvalidStatus,
		CodeMessageInvalidSender,
		CodeMessageEmptyContent:
		return ClassValidation

	// IllegalTransition - state doesn't allow the operation
	case CodeInvitationInvalidTransition,
		CodeInvitationRejectedTerminal,
		CodeInvitationSecondaryNotActive,
		CodeAlreadyExists:
		return ClassIllegalTransition

	// NotFound - record doesn't exist
	case CodeNotFound:
		return ClassNotFound

	// Persistence - backing store failed
	case CodePersistence:
		return ClassPersistence

	default:
		return ClassInternal
	}
}
