package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenEnablesWAL(t *testing.T) {
	st := openTestStore(t)

	var mode string
	err := st.(*sqliteStore).db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.CreateUser(ctx, "alice", "hunter22")
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := st.Authenticate(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, DefaultCategory, got.Preferences)
	assert.False(t, got.Linked())

	_, err = st.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Authenticate(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicateLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.CreateUser(ctx, "bob", "secret1")
	require.NoError(t, err)

	_, err = st.CreateUser(ctx, "bob", "othersecret")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Original credential still authenticates; the duplicate attempt wrote nothing.
	got, err := st.Authenticate(ctx, "bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	linked, err := st.ListLinked(ctx)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestUpdatePreferencesAndListLinked(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	idA, err := st.CreateUser(ctx, "alice", "hunter22")
	require.NoError(t, err)
	idB, err := st.CreateUser(ctx, "bob", "secret1")
	require.NoError(t, err)

	require.NoError(t, st.UpdatePreferences(ctx, idA, []string{"business", "technology"}, "12345"))
	require.NoError(t, st.UpdatePreferences(ctx, idB, nil, ""))

	a, err := st.GetUser(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, "business,technology", a.Preferences)
	assert.Equal(t, []string{"business", "technology"}, a.Categories())
	assert.True(t, a.Linked())

	b, err := st.GetUser(ctx, idB)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, b.Preferences)

	linked, err := st.ListLinked(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, idA, linked[0].ID)

	byChat, err := st.GetByChatID(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, idA, byChat.ID)

	_, err = st.GetByChatID(ctx, "99999")
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.UpdatePreferences(ctx, 424242, []string{"health"}, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseCategories(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{"general"}},
		{"   ", []string{"general"}},
		{",,  ,", []string{"general"}},
		{"tech, sports", []string{"tech", "sports"}},
		{"business", []string{"business"}},
		{" health ,science,", []string{"health", "science"}},
	}
	for _, tc := range cases {
		got := ParseCategories(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
