package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"waconsole/internal/migrations"
	"waconsole/internal/models"
	"waconsole/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the message store. SQLite serializes row mutation, which is the
// only cross-request synchronization this system relies on.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveMessage appends a message and fills in its ID and, when unset, its
// creation timestamp. Direction, sender and recipient are never rewritten
// after this point.
func (d *Database) SaveMessage(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var kind, remoteID, mimeType, localRef, caption sql.NullString
	if msg.Media != nil {
		kind = sql.NullString{String: string(msg.Media.Kind), Valid: true}
		remoteID = sql.NullString{String: msg.Media.RemoteID, Valid: true}
		mimeType = sql.NullString{String: msg.Media.MimeType, Valid: true}
		localRef = sql.NullString{String: msg.Media.LocalRef, Valid: true}
		caption = sql.NullString{String: msg.Media.Caption, Valid: true}
	}

	query := `
		INSERT INTO messages (
			sender, recipient, body,
			media_kind, media_remote_id, media_mime_type, media_local_ref, media_caption,
			direction, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := d.db.ExecContext(ctx, query,
		msg.Sender,
		msg.Recipient,
		msg.Text,
		kind,
		remoteID,
		mimeType,
		localRef,
		caption,
		msg.Direction,
		msg.Status,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted message id: %w", err)
	}
	msg.ID = id

	return nil
}

// UpdateStatusByRecipient overwrites the status of every message addressed to
// the given recipient. The update is deliberately blind: it is keyed by
// recipient rather than message id and does not order transitions, so a stale
// event can regress a later status. Zero matched rows is not an error.
func (d *Database) UpdateStatusByRecipient(ctx context.Context, recipientID string, status models.MessageStatus) error {
	query := `
		UPDATE messages
		SET status = ?
		WHERE recipient = ?
	`

	if _, err := d.db.ExecContext(ctx, query, status, recipientID); err != nil {
		return fmt.Errorf("failed to update status for recipient: %w", err)
	}

	return nil
}

// MarkInboundSeen transitions all inbound messages from the given contact to
// seen. Already-seen rows are excluded from the update, which makes repeated
// reads of the same conversation no-ops.
func (d *Database) MarkInboundSeen(ctx context.Context, contactID string) error {
	query := `
		UPDATE messages
		SET status = ?
		WHERE sender = ? AND direction = ? AND status <> ?
	`

	if _, err := d.db.ExecContext(ctx, query,
		models.MessageStatusSeen, contactID, models.DirectionInbound, models.MessageStatusSeen); err != nil {
		return fmt.Errorf("failed to mark conversation seen: %w", err)
	}

	return nil
}

// GetConversation returns the full history with a contact, oldest first.
func (d *Database) GetConversation(ctx context.Context, contactID string) ([]models.Message, error) {
	query := `
		SELECT id, sender, recipient, body,
			   media_kind, media_remote_id, media_mime_type, media_local_ref, media_caption,
			   direction, status, created_at
		FROM messages
		WHERE sender = ? OR recipient = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := d.db.QueryContext(ctx, query, contactID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation rows: %w", err)
	}

	return messages, nil
}

// GetMessageByID returns a single message, or nil when it does not exist.
func (d *Database) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT id, sender, recipient, body,
			   media_kind, media_remote_id, media_mime_type, media_local_ref, media_caption,
			   direction, status, created_at
		FROM messages
		WHERE id = ?
	`

	row := d.db.QueryRowContext(ctx, query, id)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetChatSummaries returns one entry per distinct contact that has appeared
// as a sender, carrying that contact's latest message, most recent first.
// SQLite resolves the bare columns from the row that supplied MAX(created_at).
func (d *Database) GetChatSummaries(ctx context.Context) ([]models.ChatSummary, error) {
	query := `
		SELECT sender, body, media_kind, MAX(created_at) AS last_at
		FROM messages
		WHERE sender <> ''
		GROUP BY sender
		ORDER BY last_at DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.ChatSummary{}
	for rows.Next() {
		var summary models.ChatSummary
		var mediaKind sql.NullString
		var lastAt string
		// The aggregate loses the column's declared type, so the driver hands
		// the timestamp back as text.
		if err := rows.Scan(&summary.Contact, &summary.LastText, &mediaKind, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat summary: %w", err)
		}
		summary.LastAt, err = parseStoredTime(lastAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chat summary timestamp: %w", err)
		}
		if mediaKind.Valid {
			summary.LastMediaKind = models.MediaKind(mediaKind.String)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat summary rows: %w", err)
	}

	return summaries, nil
}

// storedTimeFormats are the timestamp layouts the sqlite3 driver writes,
// longest first.
var storedTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseStoredTime(s string) (time.Time, error) {
	for _, format := range storedTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var kind, remoteID, mimeType, localRef, caption sql.NullString

	err := row.Scan(
		&msg.ID,
		&msg.Sender,
		&msg.Recipient,
		&msg.Text,
		&kind,
		&remoteID,
		&mimeType,
		&localRef,
		&caption,
		&msg.Direction,
		&msg.Status,
		&msg.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	if kind.Valid && kind.String != "" {
		msg.Media = &models.Media{
			Kind:     models.MediaKind(kind.String),
			RemoteID: remoteID.String,
			MimeType: mimeType.String,
			LocalRef: localRef.String,
			Caption:  caption.String,
		}
	}

	return msg, nil
}
