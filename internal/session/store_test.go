package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conneqt/leavebot-go/internal/errors"
)

// storeUnderTest runs the same contract tests against every Store
// implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing returns not found", func(t *testing.T) {
		_, err := store.Load(ctx, "nope")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("save and load round trip", func(t *testing.T) {
		s := New("sess-1", "emp-1")
		s.State.SetLeaveType("Annual Leave")
		s.State.Set("startDate", "2024-10-14")
		s.State.Set("endDate", []string{"2024-10-18", "2024-10-19"})
		s.State.SetWorkingDays(5)
		s.NullFields["medicalCertificate"] = true
		s.History.Append(RoleUser, "I want annual leave", time.Now())
		s.History.Append(RoleBot, "Which dates?", time.Now())
		s.PreviousAction = "extraction"
		s.LastPrompt = "Which dates?"
		s.Profile = &UserProfile{
			PersonNumber:       "12345",
			LegalEntityID:      "300000001",
			FullName:           "Jordan Smith",
			AnnualLeaveBalance: 12.5,
		}

		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "emp-1", loaded.UserID)
		assert.Equal(t, "Annual Leave", loaded.State.LeaveType())
		assert.Equal(t, "2024-10-14", loaded.State.StringValue("startDate"))
		assert.Equal(t, []string{"2024-10-18", "2024-10-19"}, loaded.State.Candidates("endDate"))
		assert.Equal(t, 5, loaded.State.WorkingDays())
		assert.True(t, loaded.NullFields["medicalCertificate"])
		assert.Len(t, loaded.History, 2)
		assert.Equal(t, "extraction", loaded.PreviousAction)
		require.NotNil(t, loaded.Profile)
		assert.Equal(t, 12.5, loaded.Profile.AnnualLeaveBalance)
	})

	t.Run("save overwrites", func(t *testing.T) {
		s := New("sess-2", "emp-2")
		s.State.SetLeaveType("Sick Leave")
		require.NoError(t, store.Save(ctx, s))

		s.State.SetLeaveType("Annual Leave")
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "sess-2")
		require.NoError(t, err)
		assert.Equal(t, "Annual Leave", loaded.State.LeaveType())
	})

	t.Run("delete", func(t *testing.T) {
		s := New("sess-3", "emp-3")
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, "sess-3"))

		_, err := store.Load(ctx, "sess-3")
		assert.True(t, apperrors.IsNotFound(err))

		// Deleting again is not an error
		assert.NoError(t, store.Delete(ctx, "sess-3"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()
	storeUnderTest(t, store)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New("sess-1", "emp-1")
	s.State.SetLeaveType("Annual Leave")
	require.NoError(t, store.Save(ctx, s))

	// Mutating the original after save must not affect the stored copy
	s.State.SetLeaveType("Sick Leave")

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Annual Leave", loaded.State.LeaveType())

	// Mutating a loaded copy must not affect the store either
	loaded.State.SetLeaveType("Remote Working Leave")
	again, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Annual Leave", again.State.LeaveType())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	storeUnderTest(t, store)
}

func TestSQLiteStoreDeleteStale(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save(ctx, New("fresh", "emp-1")))

	// Backdate one session past the idle cutoff
	stale := New("stale", "emp-2")
	require.NoError(t, store.Save(ctx, stale))
	_, err = store.conn.Exec(`UPDATE sessions SET updated_at = ? WHERE id = 'stale'`,
		time.Now().Add(-48*time.Hour).Unix())
	require.NoError(t, err)

	n, err := store.DeleteStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Load(ctx, "stale")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.Load(ctx, "fresh")
	assert.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
