package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDate(raw)
	require.NoError(t, err)
	return parsed
}

func TestNewPeriod_RejectsEmptyAndInverted(t *testing.T) {
	start := date(t, "2025-06-10")

	_, err := NewPeriod(start, start)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPeriod(start, start.Add(-time.Hour))
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPeriod(time.Time{}, start)
	require.ErrorIs(t, err, ErrValidation)

	p, err := NewPeriod(start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.Start.Location())
}

func TestPeriod_OverlapsIsStrict(t *testing.T) {
	june10 := date(t, "2025-06-10")
	june12 := date(t, "2025-06-12")
	june14 := date(t, "2025-06-14")
	june11 := date(t, "2025-06-11")
	june13 := date(t, "2025-06-13")

	first := Period{Start: june10, End: june12}
	tests := []struct {
		name  string
		other Period
		want  bool
	}{
		{name: "back to back after", other: Period{Start: june12, End: june14}, want: false},
		{name: "back to back before", other: Period{Start: june10.AddDate(0, 0, -2), End: june10}, want: false},
		{name: "partial", other: Period{Start: june11, End: june13}, want: true},
		{name: "contained", other: Period{Start: june10.Add(time.Hour), End: june11}, want: true},
		{name: "identical", other: first, want: true},
		{name: "disjoint", other: Period{Start: june13, End: june14}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, first.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(first))
		})
	}
}

func TestPeriod_DaysRoundsUp(t *testing.T) {
	start := date(t, "2025-06-10")
	assert.Equal(t, int64(1), Period{Start: start, End: start.Add(time.Minute)}.Days())
	assert.Equal(t, int64(1), Period{Start: start, End: start.AddDate(0, 0, 1)}.Days())
	assert.Equal(t, int64(3), Period{Start: start, End: start.AddDate(0, 0, 2).Add(time.Hour)}.Days())
}

func TestPeriod_Envelope(t *testing.T) {
	a := Period{Start: date(t, "2025-06-10"), End: date(t, "2025-06-12")}
	b := Period{Start: date(t, "2025-06-11"), End: date(t, "2025-06-15")}
	env := a.Envelope(b)
	assert.True(t, env.Start.Equal(a.Start))
	assert.True(t, env.End.Equal(b.End))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-06-10T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10T08:00:00Z", got.Format(time.RFC3339))

	got, err = ParseDate(" 2025-06-10 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10T00:00:00Z", got.Format(time.RFC3339))

	_, err = ParseDate("10/06/2025")
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseDate("")
	require.ErrorIs(t, err, ErrValidation)
}
