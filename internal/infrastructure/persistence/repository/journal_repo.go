package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// JournalRepository implements port.MessageJournal on SQLite
type JournalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewJournalRepository creates a new message journal repository
func NewJournalRepository(db *sql.DB, logger *zap.Logger) port.MessageJournal {
	return &JournalRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts or replaces the snapshot of a message
func (r *JournalRepository) Record(ctx context.Context, snap *entity.MessageSnapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO message_journal (message_id, chat_id, author_id, text, in_thread, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.MessageID,
		snap.ChatID,
		snap.AuthorID,
		snap.Text,
		snap.InThread,
		snap.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record message", zap.String("message_id", snap.MessageID), zap.Error(err))
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// Lookup returns the snapshot for messageID or entity.ErrNotFound
func (r *JournalRepository) Lookup(ctx context.Context, messageID string) (*entity.MessageSnapshot, error) {
	query := `
		SELECT message_id, chat_id, author_id, text, in_thread, updated_at
		FROM message_journal
		WHERE message_id = ?
	`

	var snap entity.MessageSnapshot
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(
		&snap.MessageID,
		&snap.ChatID,
		&snap.AuthorID,
		&snap.Text,
		&snap.InThread,
		&snap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up message: %w", err)
	}
	return &snap, nil
}

// Forget removes a message from the journal
func (r *JournalRepository) Forget(ctx context.Context, messageID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM message_journal WHERE message_id = ?", messageID); err != nil {
		return fmt.Errorf("failed to forget message: %w", err)
	}
	return nil
}
