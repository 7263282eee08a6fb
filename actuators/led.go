package actuators

import (
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

type Output interface {
	Name() string
	On() error
	Off() error
	IsOn() bool
}

// LED is any plain on/off line: an LED, a relay or a self oscillating buzzer.
type LED struct {
	name    string
	lock    sync.Mutex
	on      bool
	gpioPin gpio.PinOut
}

// NewLED drives the line low before handing it back so the output starts at
// rest.
func NewLED(name string, pin gpio.PinOut) (*LED, error) {
	if pin == nil {
		return nil, fmt.Errorf("led %s: no pin", name)
	}
	logger.Infof("Creating new LED on pin [%v] called [%v]", pin, name)
	l := &LED{
		name:    name,
		gpioPin: pin,
	}
	if err := l.Off(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LED) Name() string {
	return l.name
}

func (l *LED) On() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err := l.gpioPin.Out(gpio.High); err != nil {
		return fmt.Errorf("%s on: %w", l.name, err)
	}
	l.on = true
	return nil
}

func (l *LED) Off() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err := l.gpioPin.Out(gpio.Low); err != nil {
		return fmt.Errorf("%s off: %w", l.name, err)
	}
	l.on = false
	return nil
}

func (l *LED) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}
