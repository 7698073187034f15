package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restui/internal/types"
)

func newTestManager(t *testing.T, app string) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "nested", "history.db"), app)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, "Bank")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	require.NoError(t, m.Record(ctx, "GET", "/accounts", &types.Envelope{
		OK: true, Status: 200, Raw: `{"data":[]}`, Duration: 12,
		Headers: map[string]string{"x-request-id": "req-1"},
	}))

	m.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, m.Record(ctx, "POST", "/spend", &types.Envelope{
		Status: 400, Raw: `{"error":{"message":"bad amount"}}`,
		Error: &types.ErrorBody{Message: "bad amount"},
	}))
	require.NoError(t, m.Record(ctx, "GET", "/ignored", nil))

	entries, err := m.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, "POST", newest.Method)
	assert.False(t, newest.OK)
	assert.Equal(t, "bad amount", newest.Error)
	assert.True(t, newest.Timestamp.Equal(base.Add(time.Minute)))

	oldest := entries[1]
	assert.Equal(t, "Bank", oldest.App)
	assert.Equal(t, "/accounts", oldest.URL)
	assert.True(t, oldest.OK)
	assert.Equal(t, 200, oldest.Status)
	assert.Equal(t, "req-1", oldest.RequestID)
	assert.Equal(t, int64(12), oldest.Duration)
	assert.Equal(t, `{"data":[]}`, oldest.Body)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	bank, err := NewManager(dbPath, "Bank")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, bank.Record(ctx, "GET", "/a", &types.Envelope{OK: true, Status: 200}))
	}
	require.NoError(t, bank.Close())

	// Reopening runs migrations again without error
	chat, err := NewManager(dbPath, "Chat")
	require.NoError(t, err)
	t.Cleanup(func() { chat.Close() })
	require.NoError(t, chat.Record(ctx, "GET", "/b", &types.Envelope{OK: true, Status: 200}))

	all, err := chat.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	onlyBank, err := chat.List(ctx, Filter{App: "Bank"})
	require.NoError(t, err)
	assert.Len(t, onlyBank, 3)

	limited, err := chat.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, "")
	for i := 0; i < 2; i++ {
		require.NoError(t, m.Record(ctx, "GET", "/a", &types.Envelope{Status: 0}))
	}

	entries, err := m.List(ctx, Filter{})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, entries[0].ID))

	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, m.Clear(ctx))
	count, err = m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
