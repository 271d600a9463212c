package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type area struct {
	Name string   `json:"name"`
	Km2  *float64 `json:"km2"`
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := NewFileCacheAt[area](t.TempDir())
	key := Key("emulator", "abc", 10)

	_, ok := fc.Get(key)
	assert.False(t, ok)

	v := 0.0123
	require.NoError(t, fc.Set(key, area{Name: "water", Km2: &v}))
	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, "water", got.Name)
	require.NotNil(t, got.Km2)
	assert.Equal(t, v, *got.Km2)

	require.NoError(t, fc.Set(key, area{Name: "empty"}))
	got, ok = fc.Get(key)
	require.True(t, ok)
	assert.Nil(t, got.Km2)
}

func TestFileCacheRejectsTamperedEntries(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCacheAt[area](dir)
	require.NoError(t, fc.Set("k", area{Name: "water"}))

	path := filepath.Join(dir, "k.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(string(data[:len(data)-3])+"x}"), 0644))

	_, ok := fc.Get("k")
	assert.False(t, ok)
}

func TestFileCacheMaxAge(t *testing.T) {
	fc := NewFileCacheAt[area](t.TempDir())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return now }
	fc.MaxAge = time.Hour
	require.NoError(t, fc.Set("k", area{Name: "water"}))

	now = now.Add(30 * time.Minute)
	_, ok := fc.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = fc.Get("k")
	assert.False(t, ok)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("a", 1), Key("a", 1))
	assert.NotEqual(t, Key("a", 1), Key("a", 2))
	assert.Len(t, Key("x"), 40)
}
