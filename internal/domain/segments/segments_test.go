package segments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_TwoSegments(t *testing.T) {
	got := Plan(1000, 15, 1.5, "/music/Talk Show.mp3")
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 0.0, got[0].Start)
	assert.Equal(t, 900.0, got[0].Duration)
	assert.Equal(t, "speed_1.5x_part001_Talk Show.mp3", got[0].Name)

	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, 900.0, got[1].Start)
	assert.Equal(t, 900.0, got[1].Duration, "tail is left to ffmpeg to truncate")
	assert.Equal(t, "speed_1.5x_part002_Talk Show.mp3", got[1].Name)
}

func TestPlan_SingleSegmentOmitsPartNumber(t *testing.T) {
	got := Plan(300, 15, 2, "/a/b/song.MP3")
	require.Len(t, got, 1)
	assert.Equal(t, "speed_2.0x_song.MP3", got[0].Name)
	assert.Equal(t, 0.0, got[0].Start)
}

func TestPlan_Count(t *testing.T) {
	tests := []struct {
		duration float64
		minutes  int
		want     int
	}{
		{duration: 1, minutes: 15, want: 1},
		{duration: 900, minutes: 15, want: 1},
		{duration: 900.001, minutes: 15, want: 2},
		{duration: 1800, minutes: 15, want: 2},
		{duration: 3601, minutes: 1, want: 61},
		{duration: 7200, minutes: 60, want: 2},
	}
	for _, tc := range tests {
		got := Plan(tc.duration, tc.minutes, 1.5, "x.mp3")
		ls := float64(tc.minutes) * 60
		require.Len(t, got, tc.want, "D=%v L=%v", tc.duration, tc.minutes)
		assert.Equal(t, int(math.Ceil(tc.duration/ls)), len(got))
		for i, s := range got {
			assert.Equal(t, float64(i)*ls, s.Start)
			assert.Equal(t, ls, s.Duration)
			if i > 0 {
				assert.Greater(t, s.Start, got[i-1].Start)
				assert.Equal(t, got[i-1].Start+got[i-1].Duration, s.Start, "no gaps")
			}
		}
		assert.GreaterOrEqual(t, got[len(got)-1].Start+got[len(got)-1].Duration, tc.duration)
	}
}

func TestPlan_NonPositiveLengthMeansNoSplit(t *testing.T) {
	for _, m := range []int{0, -5} {
		got := Plan(4321.5, m, 1.5, "long.mp3")
		require.Len(t, got, 1)
		assert.Equal(t, 0.0, got[0].Start)
		assert.Equal(t, 4321.5, got[0].Duration)
		assert.Equal(t, "speed_1.5x_long.mp3", got[0].Name)
	}
}

func TestPlan_NamesUnique(t *testing.T) {
	got := Plan(100*60, 1, 1.25, "ep.mp3")
	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s.Name], "duplicate %s", s.Name)
		seen[s.Name] = true
	}
	assert.Equal(t, "speed_1.25x_part100_ep.mp3", got[99].Name)
}

func TestFormatFactor(t *testing.T) {
	assert.Equal(t, "1.5", FormatFactor(1.5))
	assert.Equal(t, "2.0", FormatFactor(2))
	assert.Equal(t, "0.75", FormatFactor(0.75))
	assert.Equal(t, "10.0", FormatFactor(10))
}
