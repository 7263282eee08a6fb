package alarm

import (
	"github.com/gr-butler/alarmstation/buffer"
)

// FaultDetector watches for readings outside the plausible range of the
// sensor. A lone anomaly is ignored; the detector only trips once Trips of
// the last Window readings were out of range.
type FaultDetector struct {
	Min    float64
	Max    float64
	Window int
	Trips  int

	history *buffer.SampleBuffer
}

func NewFaultDetector(min, max float64, window, trips int) *FaultDetector {
	f := &FaultDetector{
		Min:    min,
		Max:    max,
		Window: window,
		Trips:  trips,
	}
	if window > 0 {
		f.history = buffer.NewBuffer(window)
	}
	return f
}

func (f *FaultDetector) Enabled() bool {
	return f != nil && f.history != nil
}

func (f *FaultDetector) InRange(r Reading) bool {
	return r.Value >= f.Min && r.Value <= f.Max
}

// Observe records the reading and reports whether the sensor is now
// considered faulty.
func (f *FaultDetector) Observe(r Reading) bool {
	if !f.Enabled() {
		return false
	}
	anomaly := 0.0
	if !f.InRange(r) {
		anomaly = 1
	}
	f.history.AddItem(anomaly)
	return f.Faulted()
}

func (f *FaultDetector) Faulted() bool {
	if !f.Enabled() {
		return false
	}
	trips := f.Trips
	if trips < 1 {
		trips = 1
	}
	sum, _, _ := f.history.SumMinMaxLast(f.Window)
	return int(sum) >= trips
}
