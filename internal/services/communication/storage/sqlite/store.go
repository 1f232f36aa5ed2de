// Package sqlite provides a SQLite-backed communication storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/facultyfinder/communication/internal/platform/storage/sqlitemigrate"
	"github.com/facultyfinder/communication/internal/services/communication/domain"
	"github.com/facultyfinder/communication/internal/services/communication/storage"
	"github.com/facultyfinder/communication/internal/services/communication/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists communication state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite communication store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutInvitation inserts a new invitation and its message log.
func (s *Store) PutInvitation(ctx context.Context, partition domain.Partition, inv domain.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return fmt.Errorf("partition %q is not valid", partition)
	}
	inv.ID = strings.TrimSpace(inv.ID)
	if inv.ID == "" {
		return fmt.Errorf("invitation id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put invitation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertInvitationTx(ctx, tx, partition, inv); err != nil {
		return err
	}
	if err := insertMessagesTx(ctx, tx, inv.ID, inv.Messages); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put invitation: %w", err)
	}
	return nil
}

// GetInvitation returns one invitation by ID, searching invites before sent.
func (s *Store) GetInvitation(ctx context.Context, invitationID string) (domain.Invitation, domain.Partition, error) {
	if err := ctx.Err(); err != nil {
		return domain.Invitation{}, "", err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Invitation{}, "", fmt.Errorf("storage is not configured")
	}
	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return domain.Invitation{}, "", fmt.Errorf("invitation id is required")
	}

	return getInvitation(ctx, s.sqlDB, "", invitationID)
}

// ListInvitations returns all invitations in a partition in creation order.
func (s *Store) ListInvitations(ctx context.Context, partition domain.Partition) ([]domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return nil, fmt.Errorf("partition %q is not valid", partition)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+invitationColumns+`
		 FROM invitations
		 WHERE "partition" = ?
		 ORDER BY created_at ASC, id ASC`,
		string(partition),
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, _, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("list invitations: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	for i := range out {
		messages, err := listMessages(ctx, s.sqlDB, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Messages = messages
	}
	return out, nil
}

// CountInvitationsByStatus counts partition records with the authoritative status.
func (s *Store) CountInvitationsByStatus(ctx context.Context, partition domain.Partition, status domain.Status) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if !partition.Valid() {
		return 0, fmt.Errorf("partition %q is not valid", partition)
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*)
		 FROM invitations
		 WHERE "partition" = ? AND status = ?`,
		string(partition),
		string(status),
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
	}
	return count, nil
}

// UpdateInvitation atomically applies a mutation to one invitation, searching
// both partitions.
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
	if s == nil || s.sqlDB == nil {
		return domain.Invitation{}, fmt.Errorf("storage is not configured")
	}
	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return domain.Invitation{}, fmt.Errorf("invitation id is required")
	}
	if apply == nil {
		return domain.Invitation{}, fmt.Errorf("apply func is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("begin update invitation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inv, _, err := getInvitation(ctx, tx, partition, invitationID)
	if err != nil {
		return domain.Invitation{}, err
	}

	appended := len(inv.Messages)
	if err := apply(&inv); err != nil {
		return domain.Invitation{}, err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE invitations SET
		   faculty_id = ?,
		   faculty_name = ?,
		   faculty_email = ?,
		   job_title = ?,
		   status = ?,
		   last_update_status = ?,
		   last_update_date = ?,
		   last_update_notes = ?,
		   last_update_message = ?,
		   last_update_interview_time = ?
		 WHERE id = ?`,
		inv.FacultyID,
		inv.FacultyName,
		inv.FacultyEmail,
		inv.JobTitle,
		string(inv.Status),
		lastUpdateStatus(inv.LastUpdate),
		lastUpdateDate(inv.LastUpdate),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.Notes }),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.Message }),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.InterviewTime }),
		inv.ID,
	); err != nil {
		return domain.Invitation{}, fmt.Errorf("update invitation: %w", err)
	}

	if appended > len(inv.Messages) {
		return domain.Invitation{}, fmt.Errorf("message log shrank from %d to %d entries", appended, len(inv.Messages))
	}
	if err := insertMessagesTx(ctx, tx, inv.ID, inv.Messages[appended:]); err != nil {
		return domain.Invitation{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Invitation{}, fmt.Errorf("commit update invitation: %w", err)
	}
	return inv, nil
}

const invitationColumns = `id, "partition", faculty_id, faculty_name, faculty_email, job_title, status, created_at,
	 last_update_status, last_update_date, last_update_notes, last_update_message, last_update_interview_time`

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getInvitation(ctx context.Context, q querier, partition domain.Partition, invitationID string) (domain.Invitation, domain.Partition, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = ?`
	args := []any{invitationID}
	if partition != "" {
		query += ` AND "partition" = ?`
		args = append(args, string(partition))
	}

	row := q.QueryRowContext(ctx, query, args...)
	inv, part, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invitation{}, "", storage.ErrNotFound
		}
		return domain.Invitation{}, "", fmt.Errorf("get invitation: %w", err)
	}

	messages, err := listMessages(ctx, q, inv.ID)
	if err != nil {
		return domain.Invitation{}, "", err
	}
	inv.Messages = messages
	return inv, part, nil
}

func scanInvitation(row rowScanner) (domain.Invitation, domain.Partition, error) {
	var (
		inv           domain.Invitation
		partition     string
		status        string
		createdAt     int64
		updateStatus  sql.NullString
		updateDate    sql.NullInt64
		updateNotes   string
		updateMessage string
		interviewTime string
	)
	if err := row.Scan(
		&inv.ID,
		&partition,
		&inv.FacultyID,
		&inv.FacultyName,
		&inv.FacultyEmail,
		&inv.JobTitle,
		&status,
		&createdAt,
		&updateStatus,
		&updateDate,
		&updateNotes,
		&updateMessage,
		&interviewTime,
	); err != nil {
		return domain.Invitation{}, "", err
	}

	inv.Status = domain.Status(status)
	inv.CreatedAt = fromMillis(createdAt)
	if updateDate.Valid {
		inv.LastUpdate = &domain.LastUpdate{
			Status:        domain.Status(updateStatus.String),
			Date:          fromMillis(updateDate.Int64),
			Notes:         updateNotes,
			Message:       updateMessage,
			InterviewTime: interviewTime,
		}
	}
	return inv, domain.Partition(partition), nil
}

func listMessages(ctx context.Context, q querier, invitationID string) ([]domain.Message, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT message_id, sender, content, sent_at, is_system
		 FROM invitation_messages
		 WHERE invitation_id = ?
		 ORDER BY seq ASC`,
		invitationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var (
			msg      domain.Message
			sender   string
			sentAt   int64
			isSystem int
		)
		if err := rows.Scan(&msg.ID, &sender, &msg.Content, &sentAt, &isSystem); err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		msg.Sender = domain.Sender(sender)
		msg.SentAt = fromMillis(sentAt)
		msg.IsSystem = isSystem != 0
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertInvitationTx(ctx context.Context, tx execer, partition domain.Partition, inv domain.Invitation) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO invitations (
		   id, "partition", faculty_id, faculty_name, faculty_email, job_title, status, created_at,
		   last_update_status, last_update_date, last_update_notes, last_update_message, last_update_interview_time
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		string(partition),
		inv.FacultyID,
		inv.FacultyName,
		inv.FacultyEmail,
		inv.JobTitle,
		string(inv.Status),
		toMillis(inv.CreatedAt),
		lastUpdateStatus(inv.LastUpdate),
		lastUpdateDate(inv.LastUpdate),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.Notes }),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.Message }),
		lastUpdateField(inv.LastUpdate, func(u *domain.LastUpdate) string { return u.InterviewTime }),
	)
	if err != nil {
		if isInvitationUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

func insertMessagesTx(ctx context.Context, tx execer, invitationID string, messages []domain.Message) error {
	for _, msg := range messages {
		isSystem := 0
		if msg.IsSystem {
			isSystem = 1
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO invitation_messages (invitation_id, message_id, sender, content, sent_at, is_system)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			invitationID,
			msg.ID,
			string(msg.Sender),
			msg.Content,
			toMillis(msg.SentAt),
			isSystem,
		); err != nil {
			return fmt.Errorf("append message %s: %w", msg.ID, err)
		}
	}
	return nil
}

func lastUpdateStatus(update *domain.LastUpdate) any {
	if update == nil || update.Status == domain.StatusUnspecified {
		return nil
	}
	return string(update.Status)
}

func lastUpdateDate(update *domain.LastUpdate) any {
	if update == nil {
		return nil
	}
	return toMillis(update.Date)
}

func lastUpdateField(update *domain.LastUpdate, field func(*domain.LastUpdate) string) string {
	if update == nil {
		return ""
	}
	return field(update)
}

func isInvitationUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "invitations.id")
}

var _ storage.Store = (*Store)(nil)
