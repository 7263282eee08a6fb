package alarm

import "time"

/*
 * alarm holds the decision side of the station: what a sample is, what the
 * alarm condition is, and how one becomes the other. Nothing in here touches
 * hardware.
 */

type Kind int

const (
	Digital Kind = iota // two valued line, Value is 0 (low) or 1 (high)
	Analog              // quantized or physical magnitude
)

func (k Kind) String() string {
	switch k {
	case Digital:
		return "digital"
	case Analog:
		return "analog"
	default:
		return "unknown"
	}
}

// Reading is one sample taken during a single cycle. Raw is the value the
// hardware gave us, Value is what the policy sees after decoding.
type Reading struct {
	Kind  Kind
	Value float64
	Raw   int64
	Time  time.Time
}

func (r Reading) Float64() float64 {
	return r.Value
}

type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

func (s State) IsActive() bool {
	return s == Active
}
