// Package seed loads a small fixture data set into a communication store for
// local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
)

type fixture struct {
	partition  domain.Partition
	invitation domain.Invitation
}

func fixtures() []fixture {
	return []fixture{
		{
			partition: domain.PartitionInvites,
			invitation: domain.Invitation{
				ID:           "inv1",
				FacultyID:    "fac1",
				FacultyName:  "Dr. Sarah Johnson",
				FacultyEmail: "sarah.j@example.com",
				JobTitle:     "Senior Lecturer in Computer Science",
				Status:       domain.StatusPending,
				CreatedAt:    time.Date(2025, time.August, 28, 10, 30, 0, 0, time.UTC),
				Messages: []domain.Message{
					{
						ID:      "msg1",
						Sender:  domain.SenderFaculty,
						Content: "I am interested in the Senior Lecturer position. I have 8 years of teaching experience.",
						SentAt:  time.Date(2025, time.August, 28, 10, 30, 0, 0, time.UTC),
					},
				},
			},
		},
		{
			partition: domain.PartitionInvites,
			invitation: domain.Invitation{
				ID:           "inv2",
				FacultyID:    "fac2",
				FacultyName:  "Dr. Michael Chen",
				FacultyEmail: "michael.c@example.com",
				JobTitle:     "Assistant Professor - Data Science",
				Status:       domain.StatusPending,
				CreatedAt:    time.Date(2025, time.August, 27, 14, 15, 0, 0, time.UTC),
				Messages: []domain.Message{
					{
						ID:      "msg2",
						Sender:  domain.SenderFaculty,
						Content: "I would like to apply for the Assistant Professor position in Data Science.",
						SentAt:  time.Date(2025, time.August, 27, 14, 15, 0, 0, time.UTC),
					},
				},
			},
		},
		{
			partition: domain.PartitionSent,
			invitation: domain.Invitation{
				ID:           "sent1",
				FacultyID:    "fac3",
				FacultyName:  "Dr. Emily Wilson",
				FacultyEmail: "emily.w@example.com",
				JobTitle:     "Associate Professor - AI",
				Status:       domain.StatusAccepted,
				CreatedAt:    time.Date(2025, time.August, 25, 9, 0, 0, 0, time.UTC),
				LastUpdate: &domain.LastUpdate{
					Status:        domain.StatusInterview,
					Date:          time.Date(2025, time.August, 29, 10, 0, 0, 0, time.UTC),
					Notes:         "Scheduled for technical interview",
					InterviewTime: "10:00 AM EST",
				},
				Messages: []domain.Message{
					{
						ID:      "msg3",
						Sender:  domain.SenderRecruiter,
						Content: "Invitation to apply for Associate Professor position in AI",
						SentAt:  time.Date(2025, time.August, 25, 9, 0, 0, 0, time.UTC),
					},
					{
						ID:      "msg4",
						Sender:  domain.SenderFaculty,
						Content: "Thank you for the invitation. I accept and would like to proceed.",
						SentAt:  time.Date(2025, time.August, 26, 11, 20, 0, 0, time.UTC),
					},
					{
						ID:      "msg5",
						Sender:  domain.SenderRecruiter,
						Content: "Great! We have scheduled a technical interview for August 29th at 10:00 AM EST.",
						SentAt:  time.Date(2025, time.August, 26, 14, 30, 0, 0, time.UTC),
					},
				},
			},
		},
		{
			partition: domain.PartitionSent,
			invitation: domain.Invitation{
				ID:           "sent2",
				FacultyID:    "fac4",
				FacultyName:  "Dr. Robert Taylor",
				FacultyEmail: "robert.t@example.com",
				JobTitle:     "Assistant Professor - Machine Learning",
				Status:       domain.StatusPending,
				CreatedAt:    time.Date(2025, time.August, 30, 14, 20, 0, 0, time.UTC),
				Messages: []domain.Message{
					{
						ID:      "msg6",
						Sender:  domain.SenderRecruiter,
						Content: "Invitation to apply for Assistant Professor position in Machine Learning",
						SentAt:  time.Date(2025, time.August, 30, 14, 20, 0, 0, time.UTC),
					},
				},
			},
		},
	}
}

// Apply loads the fixture records into the store. Records that already exist
// are left untouched, so reseeding an existing database is safe.
func Apply(ctx context.Context, store storage.Store) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("store is required")
	}

	inserted := 0
	for _, f := range fixtures() {
		err := store.PutInvitation(ctx, f.partition, f.invitation)
		if errors.Is(err, storage.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed invitation %s: %w", f.invitation.ID, err)
		}
		inserted++
	}
	return inserted, nil
}
