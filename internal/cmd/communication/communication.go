// Package communication implements the communication maintenance CLI: local
// admin commands for seeding, inspecting, and mutating invitation records.
package communication

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	platformconfig "github.com/facultyfinder/communication/internal/platform/config"
	apperrors "github.com/facultyfinder/communication/internal/platform/errors"
	"github.com/facultyfinder/communication/internal/platform/otel"
	"github.com/facultyfinder/communication/internal/seed"
	"github.com/facultyfinder/communication/internal/services/communication/app"
	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
	commsqlite "github.com/facultyfinder/communication/internal/services/communication/storage/sqlite"
	"go.uber.org/zap"
)

const serviceName = "communication"

// Config holds CLI configuration.
type Config struct {
	DBPath  string
	Timeout time.Duration
	Locale  string
	Args    []string
}

type envConfig struct {
	DBPath  string        `env:"COMMUNICATION_DB_PATH"`
	Timeout time.Duration `env:"COMMUNICATION_CLI_TIMEOUT" envDefault:"30s"`
	Locale  string        `env:"COMMUNICATION_LOCALE" envDefault:"en-US"`
}

// ParseConfig parses flags and environment into a Config. Remaining arguments
// select the subcommand and its options.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := platformconfig.ParseEnv(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		DBPath:  envCfg.DBPath,
		Timeout: envCfg.Timeout,
		Locale:  envCfg.Locale,
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "communication.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to communication sqlite database (default: COMMUNICATION_DB_PATH or data/communication.db)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for user-facing error messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run executes one CLI subcommand.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Args) == 0 {
		return errors.New("a subcommand is required: seed, pending, show, issue, accept, reject, update, or message")
	}

	shutdown, err := otel.Setup(ctx, serviceName)
	if err != nil {
		fmt.Fprintf(errOut, "tracing disabled: %v\n", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				fmt.Fprintf(errOut, "shutdown tracing: %v\n", err)
			}
		}()
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	store, err := commsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open communication store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "close store: %v\n", err)
		}
	}()

	facade := app.New(store, app.WithLogger(logger))
	command, args := cfg.Args[0], cfg.Args[1:]
	if err := dispatch(ctx, facade, store, command, args, out); err != nil {
		if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
			fmt.Fprintln(errOut, apperrors.UserMessage(err, cfg.Locale))
		}
		return err
	}
	return nil
}

func dispatch(ctx context.Context, facade *app.Facade, store storage.Store, command string, args []string, out io.Writer) error {
	switch command {
	case "seed":
		return runSeed(ctx, store, out)
	case "pending":
		return runPending(ctx, facade, out)
	case "show":
		return runShow(ctx, facade, args, out)
	case "issue":
		return runIssue(ctx, facade, args, out)
	case "accept":
		return runDecision(ctx, facade, args, out, "accept")
	case "reject":
		return runDecision(ctx, facade, args, out, "reject")
	case "update":
		return runUpdate(ctx, facade, args, out)
	case "message":
		return runMessage(ctx, facade, args, out)
	default:
		return fmt.Errorf("unknown subcommand %q", command)
	}
}

func runSeed(ctx context.Context, store storage.Store, out io.Writer) error {
	inserted, err := seed.Apply(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d invitation(s)\n", inserted)
	return nil
}

func runPending(ctx context.Context, facade *app.Facade, out io.Writer) error {
	count, err := facade.PendingInvitesCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d pending invite(s)\n", count)
	return nil
}

func runShow(ctx context.Context, facade *app.Facade, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	invitationID := fs.String("id", "", "invitation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*invitationID) == "" {
		return errors.New("-id is required")
	}

	snapshot, err := facade.Refresh(ctx)
	if err != nil {
		return err
	}
	for _, group := range []struct {
		partition domain.Partition
		records   []domain.Invitation
	}{
		{domain.PartitionInvites, snapshot.Invites},
		{domain.PartitionSent, snapshot.Sent},
	} {
		for _, inv := range group.records {
			if inv.ID != *invitationID {
				continue
			}
			printInvitation(out, group.partition, inv)
			return nil
		}
	}
	return fmt.Errorf("invitation %q not found", *invitationID)
}

func printInvitation(out io.Writer, partition domain.Partition, inv domain.Invitation) {
	fmt.Fprintf(out, "%s [%s] %s <%s>\n", inv.ID, partition, inv.FacultyName, inv.FacultyEmail)
	fmt.Fprintf(out, "  title:   %s\n", inv.JobTitle)
	fmt.Fprintf(out, "  status:  %s (display: %s)\n", inv.Status, inv.DeriveDisplayStatus())
	fmt.Fprintf(out, "  created: %s\n", inv.CreatedAt.Format(time.RFC3339))
	if inv.LastUpdate != nil {
		fmt.Fprintf(out, "  last update: %s at %s", inv.LastUpdate.Status, inv.LastUpdate.Date.Format(time.RFC3339))
		if inv.LastUpdate.InterviewTime != "" {
			fmt.Fprintf(out, " (interview %s)", inv.LastUpdate.InterviewTime)
		}
		fmt.Fprintln(out)
		if inv.LastUpdate.Notes != "" {
			fmt.Fprintf(out, "  notes: %s\n", inv.LastUpdate.Notes)
		}
	}
	for _, msg := range inv.Messages {
		marker := ""
		if msg.IsSystem {
			marker = " [system]"
		}
		fmt.Fprintf(out, "  %s %s%s: %s\n", msg.SentAt.Format(time.RFC3339), msg.Sender, marker, msg.Content)
	}
}

func runIssue(ctx context.Context, facade *app.Facade, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	partition := fs.String("partition", string(domain.PartitionSent), "target partition (invites|sent)")
	facultyID := fs.String("faculty-id", "", "faculty id")
	name := fs.String("name", "", "faculty name")
	email := fs.String("email", "", "faculty email")
	title := fs.String("title", "", "job title")
	message := fs.String("message", "", "initial thread message")
	sender := fs.String("sender", string(domain.SenderRecruiter), "initial message sender (faculty|recruiter)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	inv, err := facade.IssueInvite(ctx, domain.Partition(*partition), app.IssueInput{
		FacultyID:      *facultyID,
		FacultyName:    *name,
		FacultyEmail:   *email,
		JobTitle:       *title,
		InitialMessage: *message,
		Sender:         domain.Sender(*sender),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "issued invitation %s to %s\n", inv.ID, inv.FacultyName)
	return nil
}

func runDecision(ctx context.Context, facade *app.Facade, args []string, out io.Writer, verb string) error {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	invitationID := fs.String("id", "", "invitation id")
	notes := fs.String("notes", "", "optional notes")
	message := fs.String("message", "", "optional thread message (canned text when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*invitationID) == "" {
		return errors.New("-id is required")
	}

	input := app.UpdateInput{Notes: *notes, Message: *message}
	var (
		found bool
		err   error
	)
	if verb == "accept" {
		found, err = facade.AcceptInvite(ctx, *invitationID, input)
	} else {
		found, err = facade.RejectInvite(ctx, *invitationID, input)
	}
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("invitation %q not found", *invitationID)
	}
	fmt.Fprintf(out, "%sed invitation %s\n", verb, *invitationID)
	return nil
}

func runUpdate(ctx context.Context, facade *app.Facade, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	invitationID := fs.String("id", "", "invitation id")
	statusValue := fs.String("status", "", "new status (pending|accepted|rejected|interview|hired|follow_up)")
	dateValue := fs.String("date", "", "status change time, RFC 3339 (now when empty)")
	notes := fs.String("notes", "", "optional notes")
	message := fs.String("message", "", "optional thread message")
	interviewTime := fs.String("interview-time", "", "optional interview slot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*invitationID) == "" {
		return errors.New("-id is required")
	}
	status, ok := domain.ParseStatus(*statusValue)
	if !ok {
		return fmt.Errorf("unknown status %q", *statusValue)
	}
	var date time.Time
	if strings.TrimSpace(*dateValue) != "" {
		parsed, err := time.Parse(time.RFC3339, *dateValue)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
		date = parsed
	}

	found, err := facade.AddStatusUpdate(ctx, *invitationID, app.StatusUpdateInput{
		Status:        status,
		Date:          date,
		Notes:         *notes,
		Message:       *message,
		InterviewTime: *interviewTime,
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("invitation %q not found", *invitationID)
	}
	fmt.Fprintf(out, "updated invitation %s to %s\n", *invitationID, status)
	return nil
}

func runMessage(ctx context.Context, facade *app.Facade, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("message", flag.ContinueOnError)
	invitationID := fs.String("id", "", "invitation id")
	sender := fs.String("sender", string(domain.SenderFaculty), "message sender (faculty|recruiter)")
	content := fs.String("content", "", "message content")
	system := fs.Bool("system", false, "mark as a system message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*invitationID) == "" {
		return errors.New("-id is required")
	}

	found, err := facade.AddMessage(ctx, *invitationID, app.MessageInput{
		Sender:   domain.Sender(*sender),
		Content:  *content,
		IsSystem: *system,
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("invitation %q not found", *invitationID)
	}
	fmt.Fprintf(out, "message added to invitation %s\n", *invitationID)
	return nil
}
