package seed

import (
	"context"
	"testing"

	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage/memory"
)

func TestApplyLoadsFixtures(t *testing.T) {
	t.Parallel()

	store := memory.New()
	inserted, err := Apply(context.Background(), store)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if inserted != 4 {
		t.Fatalf("inserted = %d, want 4", inserted)
	}

	invites, err := store.ListInvitations(context.Background(), domain.PartitionInvites)
	if err != nil {
		t.Fatalf("list invites: %v", err)
	}
	if len(invites) != 2 {
		t.Fatalf("invites = %d, want 2", len(invites))
	}

	sent, err := store.ListInvitations(context.Background(), domain.PartitionSent)
	if err != nil {
		t.Fatalf("list sent: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}

	accepted, _, err := store.GetInvitation(context.Background(), "sent1")
	if err != nil {
		t.Fatalf("get sent1: %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("sent1 status = %q, want %q", accepted.Status, domain.StatusAccepted)
	}
	if accepted.LastUpdate == nil || accepted.LastUpdate.Status != domain.StatusInterview {
		t.Fatalf("sent1 last update = %+v, want interview annotation", accepted.LastUpdate)
	}
	if len(accepted.Messages) != 3 {
		t.Fatalf("sent1 messages = %d, want 3", len(accepted.Messages))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	store := memory.New()
	if _, err := Apply(context.Background(), store); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	inserted, err := Apply(context.Background(), store)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("inserted = %d, want 0 on reseed", inserted)
	}
}
