package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewInvitationNormalizesInput(t *testing.T) {
	fixedTime := time.Date(2026, time.August, 28, 10, 30, 0, 0, time.UTC)
	input := NewInvitationInput{
		FacultyID:    "  fac1  ",
		FacultyName:  " Dr. Sarah Johnson ",
		FacultyEmail: " sarah.j@example.com ",
		JobTitle:     " Senior Lecturer in Computer Science ",
	}

	inv, err := NewInvitation(input, func() time.Time { return fixedTime }, func() (string, error) {
		return "inv123", nil
	})
	if err != nil {
		t.Fatalf("new invitation: %v", err)
	}

	if inv.ID != "inv123" {
		t.Fatalf("expected id inv123, got %q", inv.ID)
	}
	if inv.FacultyName != "Dr. Sarah Johnson" {
		t.Fatalf("expected trimmed faculty name, got %q", inv.FacultyName)
	}
	if inv.JobTitle != "Senior Lecturer in Computer Science" {
		t.Fatalf("expected trimmed job title, got %q", inv.JobTitle)
	}
	if inv.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", inv.Status)
	}
	if !inv.CreatedAt.Equal(fixedTime) {
		t.Fatalf("expected creation time to match fixed time")
	}
	if inv.LastUpdate != nil {
		t.Fatal("expected no last update on a fresh invitation")
	}
	if len(inv.Messages) != 0 {
		t.Fatalf("expected empty message log, got %d entries", len(inv.Messages))
	}
}

func TestNormalizeNewInvitationInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input NewInvitationInput
		err   error
	}{
		{
			name:  "empty faculty name",
			input: NewInvitationInput{FacultyName: "   ", JobTitle: "Lecturer"},
			err:   ErrEmptyFacultyName,
		},
		{
			name:  "empty job title",
			input: NewInvitationInput{FacultyName: "Dr. Chen", JobTitle: ""},
			err:   ErrEmptyJobTitle,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeNewInvitationInput(tc.input)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestAppendMessageAssignsIDAndTimestamp(t *testing.T) {
	fixedTime := time.Date(2026, time.August, 28, 10, 30, 0, 0, time.UTC)
	inv := Invitation{ID: "inv1", Status: StatusPending}

	appended, err := inv.AppendMessage(Message{
		Sender:  SenderRecruiter,
		Content: "  We would like to invite you for an interview.  ",
	}, func() time.Time { return fixedTime }, func() (string, error) {
		return "msg1", nil
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}

	if appended.ID != "msg1" {
		t.Fatalf("expected generated id msg1, got %q", appended.ID)
	}
	if appended.Content != "We would like to invite you for an interview." {
		t.Fatalf("expected trimmed content, got %q", appended.Content)
	}
	if !appended.SentAt.Equal(fixedTime) {
		t.Fatalf("expected timestamp from clock, got %v", appended.SentAt)
	}
	if len(inv.Messages) != 1 {
		t.Fatalf("expected 1 message in log, got %d", len(inv.Messages))
	}
}

func TestAppendMessageClampsBackwardsClock(t *testing.T) {
	later := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)
	inv := Invitation{ID: "inv1", Status: StatusAccepted}

	if _, err := inv.AppendMessage(Message{Sender: SenderFaculty, Content: "first"}, func() time.Time { return later }, func() (string, error) { return "m1", nil }); err != nil {
		t.Fatalf("append first: %v", err)
	}
	second, err := inv.AppendMessage(Message{Sender: SenderFaculty, Content: "second"}, func() time.Time { return earlier }, func() (string, error) { return "m2", nil })
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	if second.SentAt.Before(inv.Messages[0].SentAt) {
		t.Fatalf("expected clamped timestamp, got %v before %v", second.SentAt, inv.Messages[0].SentAt)
	}
	if inv.Messages[0].ID != "m1" || inv.Messages[1].ID != "m2" {
		t.Fatal("expected insertion order preserved")
	}
}

func TestAppendMessageValidation(t *testing.T) {
	inv := Invitation{ID: "inv1"}

	if _, err := inv.AppendMessage(Message{Sender: "nobody", Content: "hi"}, nil, nil); !errors.Is(err, ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
	if _, err := inv.AppendMessage(Message{Sender: SenderFaculty, Content: "   "}, nil, nil); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if len(inv.Messages) != 0 {
		t.Fatalf("expected no messages appended on validation failure, got %d", len(inv.Messages))
	}
}

func TestDeriveDisplayStatus(t *testing.T) {
	tests := []struct {
		name string
		inv  Invitation
		want Status
	}{
		{
			name: "no last update",
			inv:  Invitation{Status: StatusPending},
			want: StatusPending,
		},
		{
			name: "primary last update wins",
			inv: Invitation{
				Status:     StatusAccepted,
				LastUpdate: &LastUpdate{Status: StatusRejected},
			},
			want: StatusRejected,
		},
		{
			name: "secondary last update does not override",
			inv: Invitation{
				Status:     StatusAccepted,
				LastUpdate: &LastUpdate{Status: StatusInterview},
			},
			want: StatusAccepted,
		},
		{
			name: "unrecognized last update status",
			inv: Invitation{
				Status:     StatusAccepted,
				LastUpdate: &LastUpdate{Status: Status("archived")},
			},
			want: StatusAccepted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.inv.DeriveDisplayStatus(); got != tc.want {
				t.Fatalf("DeriveDisplayStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	inv := Invitation{
		ID:         "inv1",
		Status:     StatusAccepted,
		LastUpdate: &LastUpdate{Status: StatusInterview, Notes: "scheduled"},
		Messages:   []Message{{ID: "m1", Sender: SenderFaculty, Content: "hello"}},
	}

	clone := inv.Clone()
	clone.LastUpdate.Notes = "changed"
	clone.Messages[0].Content = "changed"
	clone.Messages = append(clone.Messages, Message{ID: "m2"})

	if inv.LastUpdate.Notes != "scheduled" {
		t.Fatal("expected original last update untouched")
	}
	if inv.Messages[0].Content != "hello" {
		t.Fatal("expected original message untouched")
	}
	if len(inv.Messages) != 1 {
		t.Fatalf("expected original log length 1, got %d", len(inv.Messages))
	}
}
