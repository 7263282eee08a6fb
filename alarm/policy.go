package alarm

import (
	"errors"
	"fmt"
	"strings"
)

type Mode int

const (
	// ModeSingle activates strictly above TriggerAbove, no hysteresis.
	ModeSingle Mode = iota
	// ModeHysteresis activates strictly above ActivateAbove and releases strictly
	// below DeactivateBelow. Inside the dead band the previous state holds.
	ModeHysteresis
	// ModeDigital activates when the line sits at the Asserted level.
	ModeDigital
	// ModeToggle flips the state every cycle whatever the reading.
	ModeToggle
)

var modeNames = map[Mode]string{
	ModeSingle:     "single",
	ModeHysteresis: "hysteresis",
	ModeDigital:    "digital",
	ModeToggle:     "toggle",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names used in the configuration file.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return ModeSingle, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

var (
	ErrUnknownMode        = errors.New("unknown threshold mode")
	ErrHysteresisInverted = errors.New("deactivate threshold must be below activate threshold")
	ErrAssertedLevel      = errors.New("asserted level must be 0 or 1")
)

// Thresholds is fixed at start up and never changed afterwards.
// DeactivateBelow may be set in single mode; it is carried but not used.
type Thresholds struct {
	Mode            Mode
	TriggerAbove    float64
	ActivateAbove   float64
	DeactivateBelow float64
	Asserted        int
}

func (t Thresholds) Validate() error {
	switch t.Mode {
	case ModeSingle, ModeToggle:
		return nil
	case ModeHysteresis:
		if t.DeactivateBelow >= t.ActivateAbove {
			return fmt.Errorf("%w: deactivate [%v] activate [%v]", ErrHysteresisInverted, t.DeactivateBelow, t.ActivateAbove)
		}
		return nil
	case ModeDigital:
		if t.Asserted != 0 && t.Asserted != 1 {
			return fmt.Errorf("%w: got [%v]", ErrAssertedLevel, t.Asserted)
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnknownMode, t.Mode)
	}
}

// Evaluate maps a reading and the previous state to the new state.
func (t Thresholds) Evaluate(r Reading, previous State) State {
	switch t.Mode {
	case ModeSingle:
		return activeIf(r.Value > t.TriggerAbove)
	case ModeHysteresis:
		switch {
		case r.Value > t.ActivateAbove:
			return Active
		case r.Value < t.DeactivateBelow:
			return Inactive
		default:
			return previous
		}
	case ModeDigital:
		return activeIf(int(r.Value) == t.Asserted)
	case ModeToggle:
		return activeIf(previous == Inactive)
	default:
		return previous
	}
}

func activeIf(b bool) State {
	if b {
		return Active
	}
	return Inactive
}
