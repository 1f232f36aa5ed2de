// Package domain holds the invitation record, its message log, and the status
// engine governing lifecycle transitions.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/facultyfinder/communication/internal/platform/errors"
	"github.com/facultyfinder/communication/internal/platform/id"
)

var (
	// ErrEmptyID indicates a missing invitation ID.
	ErrEmptyID = apperrors.New(apperrors.CodeInvitationEmptyID, "invitation id is required")
	// ErrEmptyFacultyName indicates a missing faculty name.
	ErrEmptyFacultyName = apperrors.New(apperrors.CodeInvitationEmptyFacultyName, "faculty name is required")
	// ErrEmptyJobTitle indicates a missing job title.
	ErrEmptyJobTitle = apperrors.New(apperrors.CodeInvitationEmptyJobTitle, "job title is required")
	// ErrInvalidPartition indicates an unrecognized partition label.
	ErrInvalidPartition = apperrors.New(apperrors.CodeInvitationInvalidPartition, "partition must be invites or sent")
	// ErrInvalidSender indicates an unrecognized message sender.
	ErrInvalidSender = apperrors.New(apperrors.CodeMessageInvalidSender, "message sender must be faculty or recruiter")
	// ErrEmptyContent indicates a message with no content.
	ErrEmptyContent = apperrors.New(apperrors.CodeMessageEmptyContent, "message content is required")
)

// Partition names one of the two invitation collections: invites received by
// the faculty side, and invitations sent out by the faculty/recruiter side.
type Partition string

const (
	// PartitionInvites holds invitations received by faculty.
	PartitionInvites Partition = "invites"
	// PartitionSent holds invitations initiated by faculty or recruiters.
	PartitionSent Partition = "sent"
)

// Valid reports whether the partition label is recognized.
func (p Partition) Valid() bool {
	return p == PartitionInvites || p == PartitionSent
}

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	// SenderFaculty marks a message authored by the faculty side.
	SenderFaculty Sender = "faculty"
	// SenderRecruiter marks a message authored by the recruiter side.
	SenderRecruiter Sender = "recruiter"
)

// Valid reports whether the sender label is recognized.
func (s Sender) Valid() bool {
	return s == SenderFaculty || s == SenderRecruiter
}

// Message is one entry in an invitation's append-only thread.
type Message struct {
	ID       string
	Sender   Sender
	Content  string
	SentAt   time.Time
	IsSystem bool
}

// LastUpdate records the most recent status-changing action on an invitation.
type LastUpdate struct {
	Status        Status
	Date          time.Time
	Notes         string
	Message       string
	InterviewTime string
}

// Invitation is one record of recruiter/faculty communication about a job
// opportunity. Messages is insertion-ordered and append-only: past entries
// are never reordered or mutated.
type Invitation struct {
	ID           string
	FacultyID    string
	FacultyName  string
	FacultyEmail string
	JobTitle     string
	Status       Status
	CreatedAt    time.Time
	LastUpdate   *LastUpdate
	Messages     []Message
}

// NewInvitationInput describes the metadata needed to issue an invitation.
type NewInvitationInput struct {
	FacultyID    string
	FacultyName  string
	FacultyEmail string
	JobTitle     string
}

// NewInvitation creates a pending invitation with a generated ID and creation
// timestamp.
func NewInvitation(input NewInvitationInput, now func() time.Time, idGenerator func() (string, error)) (Invitation, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeNewInvitationInput(input)
	if err != nil {
		return Invitation{}, err
	}

	invitationID, err := idGenerator()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}

	return Invitation{
		ID:           invitationID,
		FacultyID:    normalized.FacultyID,
		FacultyName:  normalized.FacultyName,
		FacultyEmail: normalized.FacultyEmail,
		JobTitle:     normalized.JobTitle,
		Status:       StatusPending,
		CreatedAt:    now().UTC(),
	}, nil
}

// NormalizeNewInvitationInput trims and validates invitation metadata.
func NormalizeNewInvitationInput(input NewInvitationInput) (NewInvitationInput, error) {
	input.FacultyID = strings.TrimSpace(input.FacultyID)
	input.FacultyName = strings.TrimSpace(input.FacultyName)
	input.FacultyEmail = strings.TrimSpace(input.FacultyEmail)
	input.JobTitle = strings.TrimSpace(input.JobTitle)
	if input.FacultyName == "" {
		return NewInvitationInput{}, ErrEmptyFacultyName
	}
	if input.JobTitle == "" {
		return NewInvitationInput{}, ErrEmptyJobTitle
	}
	return input, nil
}

// AppendMessage appends one message to the thread, assigning an ID and
// timestamp when absent. Timestamps are clamped so they never precede the
// previous entry, keeping the log monotonically non-decreasing even when the
// wall clock reads earlier. Returns the message as appended.
func (inv *Invitation) AppendMessage(msg Message, now func() time.Time, idGenerator func() (string, error)) (Message, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if !msg.Sender.Valid() {
		return Message{}, ErrInvalidSender
	}
	msg.Content = strings.TrimSpace(msg.Content)
	if msg.Content == "" {
		return Message{}, ErrEmptyContent
	}

	if msg.ID == "" {
		messageID, err := idGenerator()
		if err != nil {
			return Message{}, fmt.Errorf("generate message id: %w", err)
		}
		msg.ID = messageID
	}

	if msg.SentAt.IsZero() {
		msg.SentAt = now().UTC()
	} else {
		msg.SentAt = msg.SentAt.UTC()
	}
	if last := len(inv.Messages) - 1; last >= 0 && msg.SentAt.Before(inv.Messages[last].SentAt) {
		msg.SentAt = inv.Messages[last].SentAt
	}

	inv.Messages = append(inv.Messages, msg)
	return msg, nil
}

// DeriveDisplayStatus returns the status badge shown to users: the last
// update's status when it is primary, the authoritative status otherwise.
// Secondary annotations never override the authoritative badge.
func (inv Invitation) DeriveDisplayStatus() Status {
	if inv.LastUpdate != nil && inv.LastUpdate.Status.IsPrimary() {
		return inv.LastUpdate.Status
	}
	return inv.Status
}

// Clone returns a deep copy of the invitation.
func (inv Invitation) Clone() Invitation {
	out := inv
	if inv.LastUpdate != nil {
		update := *inv.LastUpdate
		out.LastUpdate = &update
	}
	if inv.Messages != nil {
		out.Messages = make([]Message, len(inv.Messages))
		copy(out.Messages, inv.Messages)
	}
	return out
}
