package reporting

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gr-butler/alarmstation/alarm"
)

// Report is what one cycle produced, after the outputs were driven.
type Report struct {
	Station string      `url:"station,omitempty"`
	Label   string      `url:"label"`
	Value   float64     `url:"value"`
	Unit    string      `url:"unit,omitempty"`
	State   alarm.State `url:"state"`
	Fault   bool        `url:"fault,omitempty"`
	Changed bool        `url:"changed,omitempty"`
	Message string      `url:"message"`
	Time    time.Time   `url:"time"`
}

// ValueLine is the first of the two status lines, e.g. "Sensor Value: 842".
func (r Report) ValueLine() string {
	return fmt.Sprintf("%s: %s%s", r.Label, strconv.FormatFloat(r.Value, 'f', -1, 64), r.Unit)
}

type Reporter interface {
	Emit(r Report) error
}

// Formatter holds the wording for one station. Only the text is
// configurable; the two line shape is fixed.
type Formatter struct {
	Station      string
	Label        string
	Unit         string
	ActiveText   string
	InactiveText string
	FaultText    string
}

func (f Formatter) Build(r alarm.Reading, state alarm.State, fault bool) Report {
	rep := Report{
		Station: f.Station,
		Label:   f.Label,
		Value:   r.Value,
		Unit:    f.Unit,
		State:   state,
		Fault:   fault,
		Time:    r.Time,
	}
	switch {
	case fault:
		rep.Message = f.FaultText
	case state.IsActive():
		rep.Message = f.ActiveText
	default:
		rep.Message = f.InactiveText
	}
	return rep
}

// Multi sends every report to all of its reporters, even when one fails.
type Multi []Reporter

func (m Multi) Emit(r Report) error {
	var errs []error
	for _, rep := range m {
		if err := rep.Emit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every report.
type Discard struct{}

func (Discard) Emit(Report) error { return nil }
