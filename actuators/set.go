package actuators

import (
	"errors"
	"fmt"

	"github.com/gr-butler/alarmstation/alarm"
	"github.com/gr-butler/alarmstation/env"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/host/v3"
)

// Set drives every output to match the alarm state. Apply is safe to call
// every cycle; driving an output to the level it already has is a no-op on
// the wire.
type Set struct {
	outputs []Output
}

func NewSet(outputs ...Output) *Set {
	return &Set{outputs: outputs}
}

func (s *Set) Apply(state alarm.State) error {
	var errs []error
	for _, o := range s.outputs {
		var err error
		if state.IsActive() {
			err = o.On()
		} else {
			err = o.Off()
		}
		if err != nil {
			logger.Errorf("Failed to drive [%v] to [%v] [%v]", o.Name(), state, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Set) Outputs() []Output {
	return s.outputs
}

// Snapshot reports whether each output is currently on, by name.
func (s *Set) Snapshot() map[string]bool {
	snap := make(map[string]bool, len(s.outputs))
	for _, o := range s.outputs {
		snap[o.Name()] = o.IsOn()
	}
	return snap
}

// Init looks up every configured output pin. In test mode the pins are
// in-memory fakes so the station can run on a desktop.
func Init(cfg []env.OutputConfig, test bool) (*Set, error) {
	if !test {
		if _, err := host.Init(); err != nil {
			logger.Errorf("Failed to init host drivers [%v]", err)
			return nil, err
		}
	}

	outputs := make([]Output, 0, len(cfg))
	for _, oc := range cfg {
		pin, err := lookup(oc.Pin, test)
		if err != nil {
			return nil, err
		}
		o, err := newOutput(oc, pin)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, o)
	}
	return NewSet(outputs...), nil
}

func lookup(name string, test bool) (gpio.PinIO, error) {
	if test {
		return &gpiotest.Pin{N: name}, nil
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		logger.Errorf("Failed to find %v - output pin", name)
		return nil, fmt.Errorf("no such pin %q", name)
	}
	return pin, nil
}

func newOutput(oc env.OutputConfig, pin gpio.PinOut) (Output, error) {
	switch oc.Kind {
	case env.OutputBinary, "":
		return NewLED(oc.Name, pin)
	case env.OutputPWM:
		return NewBuzzer(oc.Name, pin, oc.FrequencyHz, oc.DutyPercent)
	default:
		return nil, fmt.Errorf("%w: %q", env.ErrUnknownOutput, oc.Kind)
	}
}
