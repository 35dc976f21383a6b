package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
	"github.com/garyjia/purchase-bot/migrations"
	"github.com/garyjia/purchase-bot/pkg/database"
)

func newTestJournal(t *testing.T) *JournalRepository {
	t.Helper()
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	db, err := database.New(ctx, database.Config{Path: filepath.Join(t.TempDir(), "journal.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(ctx, migrations.FS))
	return NewJournalRepository(db.DB, logger).(*JournalRepository)
}

func TestJournalRepository_RecordAndLookup(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, &entity.MessageSnapshot{
		MessageID: "om_1",
		ChatID:    "oc_purchase",
		AuthorID:  "ou_alice",
		Text:      "keyboard",
	}))

	snap, err := journal.Lookup(ctx, "om_1")
	require.NoError(t, err)
	assert.Equal(t, "ou_alice", snap.AuthorID)
	assert.Equal(t, "keyboard", snap.Text)
	assert.False(t, snap.InThread)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestJournalRepository_RecordKeepsAuthorOnEdit(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, &entity.MessageSnapshot{
		MessageID: "om_1", ChatID: "oc_purchase", AuthorID: "ou_alice", Text: "keyboard",
	}))
	require.NoError(t, journal.Record(ctx, &entity.MessageSnapshot{
		MessageID: "om_1", ChatID: "oc_purchase", Text: "mechanical keyboard",
	}))

	snap, err := journal.Lookup(ctx, "om_1")
	require.NoError(t, err)
	assert.Equal(t, "ou_alice", snap.AuthorID)
	assert.Equal(t, "mechanical keyboard", snap.Text)
}

func TestJournalRepository_Forget(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, &entity.MessageSnapshot{
		MessageID: "om_1", ChatID: "oc_purchase", AuthorID: "ou_alice", Text: "keyboard",
	}))
	require.NoError(t, journal.Forget(ctx, "om_1"))

	_, err := journal.Lookup(ctx, "om_1")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
