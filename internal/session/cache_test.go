package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LoadAbsent(t *testing.T) {
	c := NewCache(t.TempDir())

	u, err := c.Load()
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := NewCache(t.TempDir())
	want := &User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", EmailID: "ada@example.com", Skills: []string{"go"}}

	require.NoError(t, c.Save(want))

	got, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(c.SessionPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCache_EvictIdempotent(t *testing.T) {
	c := NewCache(t.TempDir())
	require.NoError(t, c.Save(&User{ID: "u1"}))

	require.NoError(t, c.Evict())
	require.NoError(t, c.Evict()) // already gone

	u, err := c.Load()
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{nope"), 0600))

	_, err := c.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt session cache")
}

func TestCache_TokenRoundTrip(t *testing.T) {
	c := NewCache(t.TempDir())

	_, ok := c.Token()
	assert.False(t, ok)

	require.NoError(t, c.SaveToken("tok-abc"))
	token, ok := c.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", token)

	require.NoError(t, c.EvictToken())
	_, ok = c.Token()
	assert.False(t, ok)
	require.NoError(t, c.EvictToken()) // idempotent
}

func TestUser_UnmarshalAcceptsBothIDKeys(t *testing.T) {
	var u User
	require.NoError(t, u.UnmarshalJSON([]byte(`{"_id":"m1","firstName":"A"}`)))
	assert.Equal(t, "m1", u.ID)

	var v User
	require.NoError(t, v.UnmarshalJSON([]byte(`{"id":"p1","firstName":"B"}`)))
	assert.Equal(t, "p1", v.ID)
}

func TestUser_FullName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u.LastName = ""
	assert.Equal(t, "Ada", u.FullName())
}
