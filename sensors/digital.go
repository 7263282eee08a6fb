package sensors

import (
	"fmt"
	"strings"

	"github.com/gr-butler/alarmstation/alarm"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// DigitalSource reads a two level line. Low reads as 0, High as 1; which of
// the two means "asserted" is decided by the policy, not here.
type DigitalSource struct {
	gpioPin gpio.PinIn
}

func NewDigitalSource(pin gpio.PinIn, pull gpio.Pull) (*DigitalSource, error) {
	if pin == nil {
		return nil, fmt.Errorf("digital source: no pin")
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as input: %w", pin, err)
	}
	logger.Infof("Digital sensor on [%s] pull [%v]", pin, pull)
	return &DigitalSource{gpioPin: pin}, nil
}

func (d *DigitalSource) Read() (alarm.Reading, error) {
	r := alarm.Reading{Kind: alarm.Digital}
	if d.gpioPin.Read() == gpio.High {
		r.Value = 1
		r.Raw = 1
	}
	return r, nil
}

func (d *DigitalSource) Kind() alarm.Kind {
	return alarm.Digital
}

func (d *DigitalSource) Close() error {
	return d.gpioPin.Halt()
}

// ParsePull maps the config names onto periph pull settings.
func ParsePull(s string) (gpio.Pull, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return gpio.PullNoChange, nil
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "float", "none":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, fmt.Errorf("unknown pull %q", s)
	}
}
