package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInvitationEmptyID            = "INVITATION_EMPTY_ID"
	CodeInvitationEmptyFacultyName   = "INVITATION_EMPTY_FACULTY_NAME"
	CodeInvitationEmptyJobTitle      = "INVITATION_EMPTY_JOB_TITLE"
	CodeInvitationInvalidPartition   = "INVITATION_INVALID_PARTITION"
	CodeInvitationInvalidStatus      = "INVITATION_INVALID_STATUS"
	CodeInvitationInvalidTransition  = "INVITATION_INVALID_STATUS_TRANSITION"
	CodeInvitationRejectedTerminal   = "INVITATION_REJECTED_TERMINAL"
	CodeInvitationSecondaryNotActive = "INVITATION_SECONDARY_STATUS_REQUIRES_ACCEPTED"
	CodeMessageInvalidSender         = "MESSAGE_INVALID_SENDER"
	CodeMessageEmptyContent          = "MESSAGE_EMPTY_CONTENT"
	CodeNotFound                     = "NOT_FOUND"
	CodeAlreadyExists                = "ALREADY_EXISTS"
	CodePersistence                  = "PERSISTENCE_FAILURE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Invitation errors
		CodeInvitationEmptyID:            "Invitation ID cannot be empty",
		CodeInvitationEmptyFacultyName:   "Faculty name cannot be empty",
		CodeInvitationEmptyJobTitle:      "Job title cannot be empty",
		CodeInvitationInvalidPartition:   "Invalid invitation partition specified",
		CodeInvitationInvalidStatus:      "Invalid invitation status specified",
		CodeInvitationInvalidTransition:  "Cannot change invitation status from {{.FromStatus}} to {{.ToStatus}}",
		CodeInvitationRejectedTerminal:   "This invitation has been rejected and can no longer be updated",
		CodeInvitationSecondaryNotActive: "Status {{.Status}} can only be recorded for an accepted invitation",

		// Message errors
		CodeMessageInvalidSender: "Message sender must be faculty or recruiter",
		CodeMessageEmptyContent:  "Message content cannot be empty",

		// Storage errors
		CodeNotFound:      "The requested record was not found",
		CodeAlreadyExists: "A record with this ID already exists",
		CodePersistence:   "The communication store could not be read or written",
	},
}
