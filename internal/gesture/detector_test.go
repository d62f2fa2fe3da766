package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestNewDetector_Defaults(t *testing.T) {
	d := NewDetector(0, 0)
	require.Equal(t, DefaultThreshold, d.threshold)
	require.Equal(t, DefaultInterval, d.interval)

	d = NewDetector(3, time.Second)
	require.Equal(t, 3, d.threshold)
	require.Equal(t, time.Second, d.interval)
}

func TestDetector_FiresOnTenthPress(t *testing.T) {
	d := NewDetector(10, 500*time.Millisecond)

	var fired []int
	for i := 0; i < 10; i++ {
		if d.Record(at(i * 100)) {
			fired = append(fired, i+1)
		}
	}
	require.Equal(t, []int{10}, fired)
}

func TestDetector_SlowPressResetsRun(t *testing.T) {
	d := NewDetector(10, 500*time.Millisecond)

	require.False(t, d.Record(at(0)))
	require.False(t, d.Record(at(600)))

	// The press at 600 starts a new run, so nine more presses are not enough
	for i := 1; i <= 8; i++ {
		require.False(t, d.Record(at(600+i*100)), "press %d", i)
	}
	require.True(t, d.Record(at(600+9*100)))
}

func TestDetector_SlowPressAfterRunRequiresFullRun(t *testing.T) {
	d := NewDetector(10, 500*time.Millisecond)

	require.False(t, d.Record(at(0)))
	start := 600
	var fired []int
	for i := 0; i < 10; i++ {
		if d.Record(at(start + i*100)) {
			fired = append(fired, i+1)
		}
	}
	require.Equal(t, []int{10}, fired)
}

func TestDetector_IntervalBoundaryResets(t *testing.T) {
	d := NewDetector(2, 500*time.Millisecond)

	require.False(t, d.Record(at(0)))
	require.False(t, d.Record(at(500)))
	require.True(t, d.Record(at(999)))
}

func TestDetector_CounterResetsAfterFire(t *testing.T) {
	d := NewDetector(3, 500*time.Millisecond)

	var fired []int
	for i := 0; i < 9; i++ {
		if d.Record(at(i * 100)) {
			fired = append(fired, i+1)
		}
	}
	require.Equal(t, []int{3, 6, 9}, fired)
}

func TestDetector_ThresholdOne(t *testing.T) {
	d := NewDetector(1, time.Second)
	require.True(t, d.Record(at(0)))
	require.True(t, d.Record(at(10)))
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(2, time.Second)
	require.False(t, d.Record(at(0)))
	d.Reset()
	require.False(t, d.Record(at(100)))
	require.True(t, d.Record(at(200)))
}
