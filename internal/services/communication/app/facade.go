// Package app exposes the communication facade: the command and query surface
// other subsystems use to read and mutate invitation records.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/facultyfinder/communication/internal/platform/errors"
	"github.com/facultyfinder/communication/internal/platform/id"
	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
	"go.uber.org/zap"
)

// errNoMutation aborts a store update without treating it as a failure. It is
// returned by apply funcs when the requested change is already in effect.
var errNoMutation = errors.New("no mutation required")

// Snapshot is a point-in-time copy of both invitation partitions.
type Snapshot struct {
	Invites []domain.Invitation
	Sent    []domain.Invitation
}

// Facade coordinates invitation commands and queries over a communication
// store. All mutations go through the store's atomic update primitive, so a
// failed command leaves no partial state behind.
type Facade struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
	newID  func() (string, error)

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option configures a facade.
type Option func(*Facade)

// WithLogger sets the logger used for command outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Facade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(f *Facade) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithIDGenerator overrides record and message ID generation.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(f *Facade) {
		if generator != nil {
			f.newID = generator
		}
	}
}

// New creates a facade over the provided store.
func New(store storage.Store, opts ...Option) *Facade {
	f := &Facade{
		store:  store,
		logger: zap.NewNop(),
		clock:  time.Now,
		newID:  id.NewID,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UpdateInput carries the optional payload of an accept or reject command.
type UpdateInput struct {
	Notes   string
	Message string
}

// StatusUpdateInput carries a requested status change.
type StatusUpdateInput struct {
	Status        domain.Status
	Date          time.Time
	Notes         string
	Message       string
	InterviewTime string
}

// MessageInput carries a thread message to append.
type MessageInput struct {
	Sender   domain.Sender
	Content  string
	IsSystem bool
}

// IssueInput carries the metadata for creating a new invitation record.
type IssueInput struct {
	FacultyID      string
	FacultyName    string
	FacultyEmail   string
	JobTitle       string
	InitialMessage string
	Sender         domain.Sender
}

// AcceptInvite moves a record in the invites partition to accepted and appends
// one system message. Accepting an already accepted record is an idempotent
// success with no mutation. Returns false when the record does not exist.
func (f *Facade) AcceptInvite(ctx context.Context, invitationID string, input UpdateInput) (bool, error) {
	return f.setStatus(ctx, "acceptInvite", domain.PartitionInvites, invitationID, statusChange{
		target:  domain.StatusAccepted,
		notes:   input.Notes,
		message: input.Message,
	})
}

// RejectInvite moves a record in the invites partition to rejected and appends
// one system message. Rejection is terminal. Returns false when the record
// does not exist.
func (f *Facade) RejectInvite(ctx context.Context, invitationID string, input UpdateInput) (bool, error) {
	return f.setStatus(ctx, "rejectInvite", domain.PartitionInvites, invitationID, statusChange{
		target:  domain.StatusRejected,
		notes:   input.Notes,
		message: input.Message,
	})
}

// AddStatusUpdate applies a status change to a record in either partition.
// Primary statuses replace the authoritative status; secondary statuses only
// annotate the last update and require the record to currently be accepted.
// Returns false when the record does not exist.
func (f *Facade) AddStatusUpdate(ctx context.Context, invitationID string, input StatusUpdateInput) (bool, error) {
	if _, ok := domain.ParseStatus(string(input.Status)); !ok {
		return false, apperrors.WithMetadata(
			apperrors.CodeInvitationInvalidStatus,
			fmt.Sprintf("status %q is not recognized", input.Status),
			map[string]string{"Status": string(input.Status)},
		)
	}
	return f.setStatus(ctx, "addStatusUpdate", "", invitationID, statusChange{
		target:        input.Status,
		date:          input.Date,
		notes:         input.Notes,
		message:       input.Message,
		interviewTime: input.InterviewTime,
	})
}

// AddMessage appends a thread message to a record in either partition without
// touching its status. Rejected records accept no further messages. Returns
// false when the record does not exist.
func (f *Facade) AddMessage(ctx context.Context, invitationID string, input MessageInput) (bool, error) {
	_, err := f.store.UpdateInvitation(ctx, invitationID, func(inv *domain.Invitation) error {
		if inv.Status == domain.StatusRejected {
			return rejectedTerminal(inv.Status)
		}
		_, err := inv.AppendMessage(domain.Message{
			Sender:   input.Sender,
			Content:  input.Content,
			IsSystem: input.IsSystem,
		}, f.clock, f.newID)
		return err
	})
	return f.finishCommand("addMessage", invitationID, err)
}

// PendingInvitesCount returns the live number of invites-partition records
// whose authoritative status is pending. The count is never cached.
func (f *Facade) PendingInvitesCount(ctx context.Context) (int, error) {
	count, err := f.store.CountInvitationsByStatus(ctx, domain.PartitionInvites, domain.StatusPending)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodePersistence, "count pending invites", err)
	}
	return count, nil
}

// Refresh re-reads both partitions from the store, replaces the cached
// snapshot, and returns the fresh copy.
func (f *Facade) Refresh(ctx context.Context) (Snapshot, error) {
	invites, err := f.store.ListInvitations(ctx, domain.PartitionInvites)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodePersistence, "list invites", err)
	}
	sent, err := f.store.ListInvitations(ctx, domain.PartitionSent)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodePersistence, "list sent invitations", err)
	}
	fresh := Snapshot{Invites: invites, Sent: sent}

	f.mu.Lock()
	f.snapshot = fresh
	f.mu.Unlock()

	f.logger.Info("refresh",
		zap.Int("invites", len(invites)),
		zap.Int("sent", len(sent)),
	)
	return cloneSnapshot(fresh), nil
}

// Snapshot returns the most recently refreshed copy of both partitions.
func (f *Facade) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneSnapshot(f.snapshot)
}

// IssueInvite creates a pending invitation record in the given partition,
// optionally opening its thread with an initial message.
func (f *Facade) IssueInvite(ctx context.Context, partition domain.Partition, input IssueInput) (domain.Invitation, error) {
	if !partition.Valid() {
		return domain.Invitation{}, domain.ErrInvalidPartition
	}

	inv, err := domain.NewInvitation(domain.NewInvitationInput{
		FacultyID:    input.FacultyID,
		FacultyName:  input.FacultyName,
		FacultyEmail: input.FacultyEmail,
		JobTitle:     input.JobTitle,
	}, f.clock, f.newID)
	if err != nil {
		return domain.Invitation{}, err
	}

	if strings.TrimSpace(input.InitialMessage) != "" {
		sender := input.Sender
		if !sender.Valid() {
			sender = domain.SenderRecruiter
		}
		if _, err := inv.AppendMessage(domain.Message{
			Sender:  sender,
			Content: input.InitialMessage,
		}, f.clock, f.newID); err != nil {
			return domain.Invitation{}, err
		}
	}

	if err := f.store.PutInvitation(ctx, partition, inv); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return domain.Invitation{}, apperrors.WithMetadata(
				apperrors.CodeAlreadyExists,
				"invitation already exists",
				map[string]string{"InvitationID": inv.ID},
			)
		}
		return domain.Invitation{}, apperrors.Wrap(apperrors.CodePersistence, "store invitation", err)
	}

	f.logger.Info("issueInvite",
		zap.String("invitation_id", inv.ID),
		zap.String("partition", string(partition)),
		zap.String("faculty_name", inv.FacultyName),
	)
	return inv, nil
}

type statusChange struct {
	target        domain.Status
	date          time.Time
	notes         string
	message       string
	interviewTime string
}

func (f *Facade) setStatus(ctx context.Context, command string, partition domain.Partition, invitationID string, change statusChange) (bool, error) {
	apply := func(inv *domain.Invitation) error {
		return f.applyStatusChange(inv, change)
	}

	var err error
	if partition == "" {
		_, err = f.store.UpdateInvitation(ctx, invitationID, apply)
	} else {
		_, err = f.store.UpdateInvitationIn(ctx, partition, invitationID, apply)
	}
	return f.finishCommand(command, invitationID, err)
}

// applyStatusChange validates and applies one status change inside a store
// update. Exactly one system message is appended per applied change.
func (f *Facade) applyStatusChange(inv *domain.Invitation, change statusChange) error {
	switch domain.Transition(inv.Status, change.target) {
	case domain.DecisionNoOp:
		return errNoMutation
	case domain.DecisionDisallowed:
		if inv.Status == domain.StatusRejected {
			return rejectedTerminal(change.target)
		}
		if change.target.IsSecondary() {
			return apperrors.WithMetadata(
				apperrors.CodeInvitationSecondaryNotActive,
				fmt.Sprintf("status %s requires an accepted invitation", change.target),
				map[string]string{"Status": string(change.target), "FromStatus": string(inv.Status)},
			)
		}
		return apperrors.WithMetadata(
			apperrors.CodeInvitationInvalidTransition,
			fmt.Sprintf("cannot change invitation status from %s to %s", inv.Status, change.target),
			map[string]string{"FromStatus": string(inv.Status), "ToStatus": string(change.target)},
		)
	}

	when := change.date
	if when.IsZero() {
		when = f.clock()
	}
	when = when.UTC()

	text := strings.TrimSpace(change.message)
	if text == "" {
		text = statusMessage(change.target)
	}

	if change.target.IsPrimary() {
		inv.Status = change.target
	}
	inv.LastUpdate = &domain.LastUpdate{
		Status:        change.target,
		Date:          when,
		Notes:         strings.TrimSpace(change.notes),
		Message:       text,
		InterviewTime: strings.TrimSpace(change.interviewTime),
	}

	_, err := inv.AppendMessage(domain.Message{
		Sender:   domain.SenderFaculty,
		Content:  text,
		SentAt:   when,
		IsSystem: true,
	}, f.clock, f.newID)
	return err
}

// finishCommand maps a store update outcome onto the (found, error) command
// contract and logs it.
func (f *Facade) finishCommand(command, invitationID string, err error) (bool, error) {
	switch {
	case err == nil:
		f.logger.Info(command, zap.String("invitation_id", invitationID), zap.Bool("found", true))
		return true, nil
	case errors.Is(err, errNoMutation):
		f.logger.Info(command,
			zap.String("invitation_id", invitationID),
			zap.Bool("found", true),
			zap.Bool("noop", true),
		)
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		f.logger.Warn(command, zap.String("invitation_id", invitationID), zap.Bool("found", false))
		return false, nil
	case apperrors.GetCode(err) != apperrors.CodeUnknown:
		f.logger.Warn(command,
			zap.String("invitation_id", invitationID),
			zap.String("code", string(apperrors.GetCode(err))),
			zap.Error(err),
		)
		return true, err
	default:
		f.logger.Error(command, zap.String("invitation_id", invitationID), zap.Error(err))
		return false, apperrors.Wrap(apperrors.CodePersistence, command, err)
	}
}

// statusMessage picks the canned thread text for a status change when the
// caller supplies none. Statuses without canned text get a generic line
// naming the new status.
func statusMessage(target domain.Status) string {
	switch target {
	case domain.StatusAccepted, domain.StatusRejected, domain.StatusFollowUp:
		return domain.DefaultMessage(target)
	default:
		return fmt.Sprintf("Status updated to %s", target)
	}
}

func rejectedTerminal(requested domain.Status) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvitationRejectedTerminal,
		"invitation is rejected and accepts no further changes",
		map[string]string{"Status": string(requested)},
	)
}

func cloneSnapshot(snapshot Snapshot) Snapshot {
	return Snapshot{
		Invites: cloneInvitations(snapshot.Invites),
		Sent:    cloneInvitations(snapshot.Sent),
	}
}

func cloneInvitations(invitations []domain.Invitation) []domain.Invitation {
	if invitations == nil {
		return nil
	}
	out := make([]domain.Invitation, len(invitations))
	for i := range invitations {
		out[i] = invitations[i].Clone()
	}
	return out
}
