// Package storage defines persistence contracts for communication state.
package storage

import (
	"context"
	"errors"

	"github.com/facultyfinder/communication/internal/services/communication/domain"
)

// ErrNotFound indicates a requested invitation record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// Store persists invitation records partitioned into invites and sent.
//
// UpdateInvitation and UpdateInvitationIn are the atomic read-modify-write
// unit: apply runs against the current record, and an apply error aborts the
// mutation with no visible change. Message logs are append-only; apply must
// only ever extend Messages.
type Store interface {
	// PutInvitation inserts a new invitation into the given partition.
	PutInvitation(ctx context.Context, partition domain.Partition, inv domain.Invitation) error
	// GetInvitation returns the invitation with the given ID, searching the
	// invites partition first and then sent.
	GetInvitation(ctx context.Context, invitationID string) (domain.Invitation, domain.Partition, error)
	// ListInvitations returns all invitations in the partition in creation order.
	ListInvitations(ctx context.Context, partition domain.Partition) ([]domain.Invitation, error)
	// CountInvitationsByStatus counts records in the partition holding the
	// authoritative status.
	CountInvitationsByStatus(ctx context.Context, partition domain.Partition, status domain.Status) (int, error)
	// UpdateInvitation atomically applies a mutation to the invitation with
	// the given ID, searching both partitions.
	UpdateInvitation(ctx context.Context, invitationID string, apply func(*domain.Invitation) error) (domain.Invitation, error)
	// UpdateInvitationIn is UpdateInvitation restricted to one partition.
	UpdateInvitationIn(ctx context.Context, partition domain.Partition, invitationID string, apply func(*domain.Invitation) error) (domain.Invitation, error)
	// Close releases store resources.
	Close() error
}
