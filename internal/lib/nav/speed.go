package nav

// defaultSpeedWindowSize is how many recent speed samples feed the moving
// average. Five samples at ~1Hz covers GPS jitter without hiding real
// acceleration.
const defaultSpeedWindowSize = 5

// speedWindow is a fixed-size ring of recent speed readings. Smoothing is a
// linearly weighted moving average: weights 1..n from oldest to newest, so
// the latest sample counts most. That damps GPS speed jitter while staying
// responsive to real acceleration and braking.
type speedWindow struct {
	samples []float64
	size    int
}

func newSpeedWindow(size int) *speedWindow {
	if size <= 0 {
		size = defaultSpeedWindowSize
	}
	return &speedWindow{size: size}
}

// add records a raw speed reading. Negative or missing readings are treated
// as 0 by the caller before they reach the window.
func (w *speedWindow) add(sample float64) {
	w.samples = append(w.samples, sample)
	if len(w.samples) > w.size {
		w.samples = w.samples[1:]
	}
}

// weightedAverage returns the linearly weighted mean of the window, 0 when
// empty.
func (w *speedWindow) weightedAverage() float64 {
	if len(w.samples) == 0 {
		return 0
	}

	var sum, weightSum float64
	for i, s := range w.samples {
		weight := float64(i + 1)
		sum += s * weight
		weightSum += weight
	}
	return sum / weightSum
}

func (w *speedWindow) reset() {
	w.samples = nil
}
