package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusDate(t *testing.T) {
	got, ok := ParseStatusDate("05/03/2026 14:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC), got)

	got, ok = ParseStatusDate("05/03/2026")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseStatusDate("2026-03-05T14:30:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC), got)

	got, ok = ParseStatusDate("2026-03-05")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "  ", "not a date", "99/99/2026", "2026-13-01"} {
		_, ok := ParseStatusDate(bad)
		assert.False(t, ok, "value %q", bad)
	}
}

func TestIsStuck(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	threshold := 72 * time.Hour

	assert.True(t, IsStuck("01/03/2026 08:00:00", now, threshold))
	assert.False(t, IsStuck("09/03/2026 08:00:00", now, threshold))

	// Exactly at the threshold is not yet stuck.
	assert.False(t, IsStuck("07/03/2026 12:00:00", now, threshold))

	// Future-dated and unparseable values never flag.
	assert.False(t, IsStuck("11/03/2026 08:00:00", now, threshold))
	assert.False(t, IsStuck("garbage", now, threshold))
	assert.False(t, IsStuck("", now, threshold))
}
