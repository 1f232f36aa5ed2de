// Package memory provides an in-memory communication store for tests and
// ephemeral setups.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
)

type record struct {
	partition  domain.Partition
	invitation domain.Invitation
}

// Store keeps invitations in memory, preserving insertion order per partition.
type Store struct {
	mu      sync.Mutex
	records map[string]*record
	order   []string
}

// New creates an empty in-memory communication store.
func New() *Store {
	return &Store{
		records: make(map[string]*record),
	}
}

// PutInvitation inserts a new invitation.
func (s *Store) PutInvitation(ctx context.Context, partition domain.Partition, inv domain.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return fmt.Errorf("partition %q is not valid", partition)
	}
	inv.ID = strings.TrimSpace(inv.ID)
	if inv.ID == "" {
		return fmt.Errorf("invitation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[inv.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.records[inv.ID] = &record{partition: partition, invitation: inv.Clone()}
	s.order = append(s.order, inv.ID)
	return nil
}

// GetInvitation returns one invitation by ID.
func (s *Store) GetInvitation(ctx context.Context, invitationID string) (domain.Invitation, domain.Partition, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, "", err
	}
	if s == nil {
		return domain.Invitation{}, "", fmt.Errorf("storage is not configured")
	}
	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return domain.Invitation{}, "", fmt.Errorf("invitation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[invitationID]
	if !ok {
		return domain.Invitation{}, "", storage.ErrNotFound
	}
	return rec.invitation.Clone(), rec.partition, nil
}

// ListInvitations returns all invitations in a partition in insertion order.
func (s *Store) ListInvitations(ctx context.Context, partition domain.Partition) ([]domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return nil, fmt.Errorf("partition %q is not valid", partition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Invitation
	for _, id := range s.order {
		rec := s.records[id]
		if rec.partition != partition {
			continue
		}
		out = append(out, rec.invitation.Clone())
	}
	return out, nil
}

// CountInvitationsByStatus counts partition records with the authoritative status.
func (s *Store) CountInvitationsByStatus(ctx context.Context, partition domain.Partition, status domain.Status) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return 0, fmt.Errorf("partition %q is not valid", partition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if rec.partition == partition && rec.invitation.Status == status {
			count++
		}
	}
	return count, nil
}

// UpdateInvitation atomically applies a mutation to one invitation.
func (s *Store) UpdateInvitation(ctx context.Context, invitationID string, apply func(*domain.Invitation) error) (domain.Invitation, error) {
	return s.update(ctx, "", invitationID, apply)
}

// UpdateInvitationIn atomically applies a mutation to one invitation within a
// single partition.
func (s *Store) UpdateInvitationIn(ctx context.Context, partition domain.Partition, invitationID string, apply func(*domain.Invitation) error) (domain.Invitation, error) {
	if !partition.Valid() {
		return domain.Invitation{}, fmt.Errorf("partition %q is not valid", partition)
	}
	return s.update(ctx, partition, invitationID, apply)
}

func (s *Store) update(ctx context.Context, partition domain.Partition, invitationID string, apply func(*domain.Invitation) error) (domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, err
	}
	if s == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}
	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return domain.Invitation{}, fmt.Errorf("invitation id is required")
	}
	if apply == nil {
		return domain.Invitation{}, fmt.Errorf("apply func is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[invitationID]
	if !ok || (partition != "" && rec.partition != partition) {
		return domain.Invitation{}, storage.ErrNotFound
	}

	// Mutate a copy so an apply error leaves the stored record untouched.
	working := rec.invitation.Clone()
	if err := apply(&working); err != nil {
		return domain.Invitation{}, err
	}
	rec.invitation = working.Clone()
	return working, nil
}

// Close releases the store. It is a no-op for the in-memory implementation.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
