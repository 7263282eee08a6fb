package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analog(v float64) Reading {
	return Reading{Kind: Analog, Value: v, Raw: int64(v)}
}

func TestSingleThreshold(t *testing.T) {
	th := Thresholds{Mode: ModeSingle, TriggerAbove: 600}
	require.NoError(t, th.Validate())

	for _, prev := range []State{Inactive, Active} {
		assert.Equal(t, Active, th.Evaluate(analog(842), prev))
		assert.Equal(t, Active, th.Evaluate(analog(601), prev))
		assert.Equal(t, Active, th.Evaluate(analog(4095), prev))
		assert.Equal(t, Inactive, th.Evaluate(analog(400), prev))
		assert.Equal(t, Inactive, th.Evaluate(analog(0), prev))
		// equality is not above
		assert.Equal(t, Inactive, th.Evaluate(analog(600), prev))
	}
}

func TestSingleThresholdIgnoresLowConstant(t *testing.T) {
	// the analog gas sensor declares a low threshold of 500 but only ever
	// compares against the high one
	th := Thresholds{Mode: ModeSingle, TriggerAbove: 700, DeactivateBelow: 500}
	require.NoError(t, th.Validate())

	assert.Equal(t, Inactive, th.Evaluate(analog(650), Active))
	assert.Equal(t, Inactive, th.Evaluate(analog(650), Inactive))
	assert.Equal(t, Inactive, th.Evaluate(analog(700), Active))
	assert.Equal(t, Active, th.Evaluate(analog(701), Inactive))
}

func TestHysteresis(t *testing.T) {
	th := Thresholds{Mode: ModeHysteresis, ActivateAbove: 700, DeactivateBelow: 500}
	require.NoError(t, th.Validate())

	for _, prev := range []State{Inactive, Active} {
		assert.Equal(t, Active, th.Evaluate(analog(701), prev))
		assert.Equal(t, Inactive, th.Evaluate(analog(499), prev))
	}

	// dead band, both edges included, keeps whatever we had
	for _, v := range []float64{500, 501, 650, 699, 700} {
		assert.Equal(t, Active, th.Evaluate(analog(v), Active), "value %v", v)
		assert.Equal(t, Inactive, th.Evaluate(analog(v), Inactive), "value %v", v)
	}
}

func TestHysteresisDoesNotFlap(t *testing.T) {
	th := Thresholds{Mode: ModeHysteresis, ActivateAbove: 700, DeactivateBelow: 500}
	state := Inactive
	var changes int
	for _, v := range []float64{690, 710, 695, 705, 690, 705, 520, 705, 480, 600, 690} {
		next := th.Evaluate(analog(v), state)
		if next != state {
			changes++
		}
		state = next
	}
	assert.Equal(t, 2, changes)
	assert.Equal(t, Inactive, state)
}

func TestHysteresisValidate(t *testing.T) {
	err := Thresholds{Mode: ModeHysteresis, ActivateAbove: 500, DeactivateBelow: 500}.Validate()
	require.ErrorIs(t, err, ErrHysteresisInverted)

	err = Thresholds{Mode: ModeHysteresis, ActivateAbove: 500, DeactivateBelow: 700}.Validate()
	require.ErrorIs(t, err, ErrHysteresisInverted)
}

func TestDigital(t *testing.T) {
	low := Reading{Kind: Digital, Value: 0}
	high := Reading{Kind: Digital, Value: 1}

	assertLow := Thresholds{Mode: ModeDigital, Asserted: 0}
	require.NoError(t, assertLow.Validate())
	assert.Equal(t, Active, assertLow.Evaluate(low, Inactive))
	assert.Equal(t, Inactive, assertLow.Evaluate(high, Active))

	assertHigh := Thresholds{Mode: ModeDigital, Asserted: 1}
	assert.Equal(t, Inactive, assertHigh.Evaluate(low, Active))
	assert.Equal(t, Active, assertHigh.Evaluate(high, Inactive))

	require.ErrorIs(t, Thresholds{Mode: ModeDigital, Asserted: 2}.Validate(), ErrAssertedLevel)
}

func TestToggle(t *testing.T) {
	th := Thresholds{Mode: ModeToggle}
	assert.Equal(t, Active, th.Evaluate(analog(21.5), Inactive))
	assert.Equal(t, Inactive, th.Evaluate(analog(21.5), Active))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeSingle, ModeHysteresis, ModeDigital, ModeToggle} {
		got, err := ParseMode(" " + m.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("schmitt")
	require.ErrorIs(t, err, ErrUnknownMode)
	require.ErrorIs(t, Thresholds{Mode: Mode(42)}.Validate(), ErrUnknownMode)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "inactive", Inactive.String())
	assert.Equal(t, "digital", Digital.String())
	assert.Equal(t, "analog", Analog.String())
	assert.True(t, Active.IsActive())
}
