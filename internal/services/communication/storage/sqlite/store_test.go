package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetInvitationRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	input := domain.Invitation{
		ID:           "inv-1",
		FacultyID:    "fac-1",
		FacultyName:  "Dr. Sarah Johnson",
		FacultyEmail: "sjohnson@university.edu",
		JobTitle:     "Assistant Professor of Biology",
		Status:       domain.StatusPending,
		CreatedAt:    now,
		Messages: []domain.Message{
			{
				ID:       "msg-1",
				Sender:   domain.SenderRecruiter,
				Content:  "We would love to talk about the opening.",
				SentAt:   now,
				IsSystem: false,
			},
		},
	}
	if err := store.PutInvitation(context.Background(), domain.PartitionInvites, input); err != nil {
		t.Fatalf("put invitation: %v", err)
	}

	got, partition, err := store.GetInvitation(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("get invitation: %v", err)
	}
	if partition != domain.PartitionInvites {
		t.Fatalf("partition = %q, want %q", partition, domain.PartitionInvites)
	}
	if got.FacultyName != input.FacultyName {
		t.Fatalf("faculty_name = %q, want %q", got.FacultyName, input.FacultyName)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusPending)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
	if got.LastUpdate != nil {
		t.Fatalf("last_update = %+v, want nil", got.LastUpdate)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(got.Messages))
	}
	if got.Messages[0].Content != input.Messages[0].Content {
		t.Fatalf("message content = %q, want %q", got.Messages[0].Content, input.Messages[0].Content)
	}
	if !got.Messages[0].SentAt.Equal(now) {
		t.Fatalf("sent_at = %v, want %v", got.Messages[0].SentAt, now)
	}
}

func TestPutInvitationReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	input := domain.Invitation{
		ID:          "inv-dup",
		FacultyName: "Dr. Michael Chen",
		JobTitle:    "Associate Professor of Chemistry",
		Status:      domain.StatusPending,
		CreatedAt:   now,
	}
	if err := store.PutInvitation(context.Background(), domain.PartitionInvites, input); err != nil {
		t.Fatalf("put initial invitation: %v", err)
	}
	err := store.PutInvitation(context.Background(), domain.PartitionSent, input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetInvitationReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, _, err := store.GetInvitation(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListInvitationsOrdersByCreation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.March, 14, 11, 0, 0, 0, time.UTC)
	for i, id := range []string{"inv-b", "inv-c", "inv-a"} {
		if err := store.PutInvitation(context.Background(), domain.PartitionInvites, domain.Invitation{
			ID:          id,
			FacultyName: "Faculty " + id,
			JobTitle:    "Lecturer",
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("put invitation %s: %v", id, err)
		}
	}
	if err := store.PutInvitation(context.Background(), domain.PartitionSent, domain.Invitation{
		ID:          "inv-other",
		FacultyName: "Faculty other",
		JobTitle:    "Lecturer",
		Status:      domain.StatusAccepted,
		CreatedAt:   base,
	}); err != nil {
		t.Fatalf("put sent invitation: %v", err)
	}

	got, err := store.ListInvitations(context.Background(), domain.PartitionInvites)
	if err != nil {
		t.Fatalf("list invitations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("invitations = %d, want 3", len(got))
	}
	for i, want := range []string{"inv-b", "inv-c", "inv-a"} {
		if got[i].ID != want {
			t.Fatalf("invitation[%d] = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestCountInvitationsByStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	statuses := []domain.Status{
		domain.StatusPending,
		domain.StatusPending,
		domain.StatusAccepted,
	}
	for i, status := range statuses {
		if err := store.PutInvitation(context.Background(), domain.PartitionInvites, domain.Invitation{
			ID:          fmt.Sprintf("inv-%d", i),
			FacultyName: "Faculty",
			JobTitle:    "Lecturer",
			Status:      status,
			CreatedAt:   now,
		}); err != nil {
			t.Fatalf("put invitation %d: %v", i, err)
		}
	}

	count, err := store.CountInvitationsByStatus(context.Background(), domain.PartitionInvites, domain.StatusPending)
	if err != nil {
		t.Fatalf("count invitations: %v", err)
	}
	if count != 2 {
		t.Fatalf("pending count = %d, want 2", count)
	}
	count, err = store.CountInvitationsByStatus(context.Background(), domain.PartitionSent, domain.StatusPending)
	if err != nil {
		t.Fatalf("count sent invitations: %v", err)
	}
	if count != 0 {
		t.Fatalf("sent pending count = %d, want 0", count)
	}
}

func TestUpdateInvitationPersistsStatusAndAppendedMessages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	created := time.Date(2026, time.March, 14, 13, 0, 0, 0, time.UTC)
	if err := store.PutInvitation(context.Background(), domain.PartitionInvites, domain.Invitation{
		ID:          "inv-accept",
		FacultyName: "Dr. Emily Wilson",
		JobTitle:    "Professor of Physics",
		Status:      domain.StatusPending,
		CreatedAt:   created,
		Messages: []domain.Message{
			{ID: "msg-1", Sender: domain.SenderRecruiter, Content: "Hello", SentAt: created},
		},
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}

	updatedAt := created.Add(time.Hour)
	got, err := store.UpdateInvitation(context.Background(), "inv-accept", func(inv *domain.Invitation) error {
		inv.Status = domain.StatusAccepted
		inv.LastUpdate = &domain.LastUpdate{
			Status:  domain.StatusAccepted,
			Date:    updatedAt,
			Message: "Invitation accepted.",
		}
		inv.Messages = append(inv.Messages, domain.Message{
			ID:       "msg-2",
			Sender:   domain.SenderFaculty,
			Content:  "Invitation accepted.",
			SentAt:   updatedAt,
			IsSystem: true,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("update invitation: %v", err)
	}
	if got.Status != domain.StatusAccepted {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusAccepted)
	}

	stored, _, err := store.GetInvitation(context.Background(), "inv-accept")
	if err != nil {
		t.Fatalf("get invitation: %v", err)
	}
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("stored status = %q, want %q", stored.Status, domain.StatusAccepted)
	}
	if stored.LastUpdate == nil {
		t.Fatal("expected last update to persist")
	}
	if stored.LastUpdate.Status != domain.StatusAccepted {
		t.Fatalf("last update status = %q, want %q", stored.LastUpdate.Status, domain.StatusAccepted)
	}
	if !stored.LastUpdate.Date.Equal(updatedAt) {
		t.Fatalf("last update date = %v, want %v", stored.LastUpdate.Date, updatedAt)
	}
	if len(stored.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(stored.Messages))
	}
	if !stored.Messages[1].IsSystem {
		t.Fatal("expected appended message to be a system message")
	}
}

func TestUpdateInvitationRollsBackOnApplyError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	created := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	if err := store.PutInvitation(context.Background(), domain.PartitionInvites, domain.Invitation{
		ID:          "inv-rollback",
		FacultyName: "Dr. Robert Taylor",
		JobTitle:    "Department Chair",
		Status:      domain.StatusPending,
		CreatedAt:   created,
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}

	applyErr := errors.New("boom")
	_, err := store.UpdateInvitation(context.Background(), "inv-rollback", func(inv *domain.Invitation) error {
		inv.Status = domain.StatusAccepted
		inv.Messages = append(inv.Messages, domain.Message{
			ID:     "msg-lost",
			Sender: domain.SenderFaculty,
			SentAt: created,
		})
		return applyErr
	})
	if !errors.Is(err, applyErr) {
		t.Fatalf("update error = %v, want %v", err, applyErr)
	}

	stored, _, err := store.GetInvitation(context.Background(), "inv-rollback")
	if err != nil {
		t.Fatalf("get invitation: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Fatalf("status = %q, want %q", stored.Status, domain.StatusPending)
	}
	if len(stored.Messages) != 0 {
		t.Fatalf("messages = %d, want 0", len(stored.Messages))
	}
}

func TestUpdateInvitationInScopesPartition(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	created := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	if err := store.PutInvitation(context.Background(), domain.PartitionSent, domain.Invitation{
		ID:          "inv-sent",
		FacultyName: "Dr. Emily Wilson",
		JobTitle:    "Professor of Physics",
		Status:      domain.StatusAccepted,
		CreatedAt:   created,
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}

	_, err := store.UpdateInvitationIn(context.Background(), domain.PartitionInvites, "inv-sent", func(inv *domain.Invitation) error {
		return nil
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-partition update error = %v, want %v", err, storage.ErrNotFound)
	}

	if _, err := store.UpdateInvitationIn(context.Background(), domain.PartitionSent, "inv-sent", func(inv *domain.Invitation) error {
		inv.JobTitle = "Distinguished Professor of Physics"
		return nil
	}); err != nil {
		t.Fatalf("same-partition update: %v", err)
	}

	stored, _, err := store.GetInvitation(context.Background(), "inv-sent")
	if err != nil {
		t.Fatalf("get invitation: %v", err)
	}
	if stored.JobTitle != "Distinguished Professor of Physics" {
		t.Fatalf("job title = %q, want updated title", stored.JobTitle)
	}
}

func TestUpdateInvitationReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.UpdateInvitation(context.Background(), "missing", func(inv *domain.Invitation) error {
		return nil
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update error = %v, want %v", err, storage.ErrNotFound)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "communication.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
