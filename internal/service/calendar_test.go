package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsNewDay(t *testing.T) {
	today := time.Date(2026, 10, 14, 0, 1, 0, 0, time.UTC)

	assert.True(t, IsNewDay(time.Date(2026, 10, 13, 23, 59, 0, 0, time.UTC), today, time.UTC))
	assert.False(t, IsNewDay(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), today.Add(20*time.Hour), time.UTC))
	assert.True(t, IsNewDay(time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC), today, time.UTC))
}

func TestIsNewDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	last := time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC) // 23:00 local
	now := time.Date(2026, 10, 13, 22, 0, 0, 0, time.UTC)  // 01:00 local next day

	assert.False(t, IsNewDay(last, now, time.UTC))
	assert.True(t, IsNewDay(last, now, loc))
}

func TestIsNewWeek(t *testing.T) {
	saturday := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 10, 18, 0, 30, 0, 0, time.UTC)
	nextSaturday := time.Date(2026, 10, 24, 22, 0, 0, 0, time.UTC)

	assert.True(t, IsNewWeek(saturday, sunday, time.UTC))
	assert.False(t, IsNewWeek(sunday, nextSaturday, time.UTC))
	assert.False(t, IsNewWeek(wednesday, saturday, time.UTC))
}

func TestStartOfWeek(t *testing.T) {
	expected := time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, expected, StartOfWeek(wednesday, time.UTC))
	assert.Equal(t, expected, StartOfWeek(expected, time.UTC))
}

func TestNextResets(t *testing.T) {
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), NextDailyReset(wednesday, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), NextWeeklyReset(wednesday, time.UTC))

	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), NextWeeklyReset(sunday, time.UTC))

	midnight := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), NextDailyReset(midnight, time.UTC))
}
