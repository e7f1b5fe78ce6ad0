package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedWindow_WeightedAverage(t *testing.T) {
	w := newSpeedWindow(5)

	assert.Zero(t, w.weightedAverage(), "Empty window averages to 0")

	w.add(10)
	assert.InDelta(t, 10.0, w.weightedAverage(), 1e-9)

	// Four stopped ticks then a 10 m/s burst: the newest sample carries
	// weight 5 of 15, so the average is damped but not ignored
	w = newSpeedWindow(5)
	for i := 0; i < 4; i++ {
		w.add(0)
	}
	w.add(10)
	avg := w.weightedAverage()
	assert.Greater(t, avg, 0.0)
	assert.Less(t, avg, 10.0)
	assert.InDelta(t, 10.0*5.0/15.0, avg, 1e-9)
}

func TestSpeedWindow_EvictsOldest(t *testing.T) {
	w := newSpeedWindow(3)
	for _, s := range []float64{1, 2, 3, 4} {
		w.add(s)
	}

	// Window is now [2 3 4] with weights 1..3
	assert.InDelta(t, (2*1+3*2+4*3)/6.0, w.weightedAverage(), 1e-9)

	w.reset()
	assert.Zero(t, w.weightedAverage())
}
