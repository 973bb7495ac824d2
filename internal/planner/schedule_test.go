package planner

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/smarttransit/circuit-trip-planner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stationWithOffset(offset int) models.Station {
	return models.Station{
		ID:                "test",
		Name:              "Test",
		Location:          models.Coordinate{Lat: 41.38, Lon: 2.14},
		Category:          models.CategoryRail,
		TimeOffsetMinutes: offset,
	}
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestSchedule_NextDeparture(t *testing.T) {
	s := NewSchedule([]int{8, 38}, time.UTC, "Montmeló")

	tests := []struct {
		name      string
		offset    int
		notBefore time.Time
		want      time.Time
	}{
		{
			name:      "reference terminal before first slot",
			offset:    0,
			notBefore: utc(2026, 5, 30, 10, 0),
			want:      utc(2026, 5, 30, 10, 8),
		},
		{
			name:      "reference terminal between slots",
			offset:    0,
			notBefore: utc(2026, 5, 30, 10, 10),
			want:      utc(2026, 5, 30, 10, 38),
		},
		{
			name:      "buffer skips a train about to leave",
			offset:    0,
			notBefore: utc(2026, 5, 30, 10, 7),
			want:      utc(2026, 5, 30, 10, 38),
		},
		{
			name:      "last slot of the hour rolls to next hour",
			offset:    0,
			notBefore: utc(2026, 5, 30, 10, 40),
			want:      utc(2026, 5, 30, 11, 8),
		},
		{
			name:      "positive offset within the hour",
			offset:    38,
			notBefore: utc(2026, 5, 30, 10, 25),
			want:      utc(2026, 5, 30, 10, 46),
		},
		{
			name:      "late evening same day",
			offset:    50,
			notBefore: utc(2026, 5, 30, 23, 50),
			want:      utc(2026, 5, 30, 23, 58),
		},
		{
			name:      "past midnight rolls into next day",
			offset:    50,
			notBefore: utc(2026, 5, 30, 23, 59),
			want:      utc(2026, 5, 31, 0, 28),
		},
		{
			name:      "month boundary",
			offset:    0,
			notBefore: utc(2026, 5, 31, 23, 45),
			want:      utc(2026, 6, 1, 0, 8),
		},
		{
			name:      "negative offset",
			offset:    -19,
			notBefore: utc(2026, 5, 30, 10, 0),
			want:      utc(2026, 5, 30, 10, 19),
		},
		{
			name:      "negative offset before midnight borrows previous day",
			offset:    -19,
			notBefore: utc(2026, 5, 30, 0, 0),
			want:      utc(2026, 5, 30, 0, 19),
		},
		{
			name:      "no candidate qualifies so the last slot advances by hours",
			offset:    -100,
			notBefore: utc(2026, 5, 30, 10, 0),
			want:      utc(2026, 5, 30, 10, 58),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := s.NextDeparture(stationWithOffset(tt.offset), tt.notBefore.UnixMilli())
			assert.Equal(t, tt.want.UnixMilli(), dep.Time, "got %s", time.UnixMilli(dep.Time).UTC())
			assert.Equal(t, "Montmeló", dep.Destination)
		})
	}
}

func TestSchedule_NextDeparture_AlwaysAfterNotBefore(t *testing.T) {
	s := NewSchedule(nil, time.UTC, "Montmeló")
	start := utc(2026, 5, 30, 0, 0)

	for _, offset := range []int{-120, -59, -19, 0, 1, 29, 50, 59, 90} {
		for step := 0; step < 24*60; step += 7 {
			notBefore := start.Add(time.Duration(step)*time.Minute + 13*time.Second).UnixMilli()
			dep := s.NextDeparture(stationWithOffset(offset), notBefore)

			require.Greater(t, dep.Time, notBefore+time.Minute.Milliseconds(), "offset %d step %d", offset, step)
			require.LessOrEqual(t, dep.Time-notBefore, (3 * time.Hour).Milliseconds(), "offset %d step %d", offset, step)
		}
	}
}

func TestSchedule_NextDeparture_TimeZone(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	s := NewSchedule([]int{8, 38}, madrid, "Montmeló")
	notBefore := time.Date(2026, 5, 30, 10, 10, 0, 0, madrid)

	dep := s.NextDeparture(stationWithOffset(0), notBefore.UnixMilli())

	assert.Equal(t, time.Date(2026, 5, 30, 10, 38, 0, 0, madrid).UnixMilli(), dep.Time)
}

func TestSchedule_Departures(t *testing.T) {
	s := NewSchedule([]int{8, 38}, time.UTC, "Montmeló")

	t.Run("consecutive slots", func(t *testing.T) {
		deps := s.Departures(stationWithOffset(0), utc(2026, 5, 30, 10, 0).UnixMilli(), 4)

		require.Len(t, deps, 4)
		assert.Equal(t, utc(2026, 5, 30, 10, 8).UnixMilli(), deps[0].Time)
		assert.Equal(t, utc(2026, 5, 30, 10, 38).UnixMilli(), deps[1].Time)
		assert.Equal(t, utc(2026, 5, 30, 11, 8).UnixMilli(), deps[2].Time)
		assert.Equal(t, utc(2026, 5, 30, 11, 38).UnixMilli(), deps[3].Time)
	})

	t.Run("zero count", func(t *testing.T) {
		deps := s.Departures(stationWithOffset(0), utc(2026, 5, 30, 10, 0).UnixMilli(), 0)
		assert.Empty(t, deps)
		assert.NotNil(t, deps)
	})
}
