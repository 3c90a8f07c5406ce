package notifications

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/trafficpanel/internal/database"
	"github.com/aristath/trafficpanel/internal/events"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema, err := database.Schema("panel")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepository_InsertAndList(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil, zerolog.Nop())
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, Toast{ID: "a", Kind: KindSuccess, Text: "first", CreatedAt: base}))
	require.NoError(t, repo.Insert(ctx, Toast{
		ID:        "b",
		Kind:      KindValidation,
		Text:      "second",
		CreatedAt: base.Add(time.Second),
		Details:   map[string]interface{}{"field": "redLower"},
	}))

	toasts, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, toasts, 2)

	assert.Equal(t, "b", toasts[0].ID)
	assert.Equal(t, KindValidation, toasts[0].Kind)
	assert.Equal(t, "redLower", toasts[0].Details["field"])
	assert.True(t, base.Add(time.Second).Equal(toasts[0].CreatedAt))

	assert.Equal(t, "a", toasts[1].ID)
	assert.Nil(t, toasts[1].Details)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRepository_CorruptDetailsAreReported(t *testing.T) {
	db := setupTestDB(t)
	bus := events.NewBus(zerolog.Nop())
	var failures []*events.ErrorEventData
	bus.Subscribe(events.ErrorOccurred, func(event *events.Event) {
		failures = append(failures, event.GetTypedData().(*events.ErrorEventData))
	})
	repo := NewRepository(db, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	_, err := db.Exec(
		"INSERT INTO notifications (id, kind, text, details, created_at) VALUES (?, ?, ?, ?, ?)",
		"broken", "validation", "text", []byte{0xc1}, time.Now().UnixMilli(),
	)
	require.NoError(t, err)

	toasts, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, toasts, 1)
	assert.Equal(t, "broken", toasts[0].ID)
	assert.Nil(t, toasts[0].Details)

	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].Context["toast_id"])
	assert.Contains(t, failures[0].Error, "failed to decode toast details")
}

func TestRepository_ListEmpty(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil, zerolog.Nop())

	toasts, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, toasts)
	assert.Empty(t, toasts)
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil, zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Insert(ctx, Toast{ID: "old", Kind: KindError, Text: "x", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, repo.Insert(ctx, Toast{ID: "new", Kind: KindError, Text: "y", CreatedAt: now}))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCleanupJob(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, Toast{ID: "old", Kind: KindMessage, Text: "x", CreatedAt: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, repo.Insert(ctx, Toast{ID: "new", Kind: KindMessage, Text: "y", CreatedAt: time.Now()}))

	job := NewCleanupJob(repo, time.Hour, zerolog.Nop())
	assert.Equal(t, "notification_cleanup", job.Name())
	require.NoError(t, job.Run())

	toasts, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, toasts, 1)
	assert.Equal(t, "new", toasts[0].ID)
}
