package actuators

import (
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Buzzer drives a passive buzzer with a PWM tone. Off stops the PWM by
// forcing the line low rather than setting a zero duty, so nothing is left
// powered. A zero frequency turns it into a plain on/off line.
type Buzzer struct {
	name    string
	lock    sync.Mutex
	on      bool
	gpioPin gpio.PinOut
	duty    gpio.Duty
	freq    physic.Frequency
}

func NewBuzzer(name string, pin gpio.PinOut, frequencyHz int, dutyPercent float64) (*Buzzer, error) {
	if pin == nil {
		return nil, fmt.Errorf("buzzer %s: no pin", name)
	}
	if frequencyHz < 0 {
		return nil, fmt.Errorf("buzzer %s: negative frequency [%v]", name, frequencyHz)
	}
	if dutyPercent <= 0 || dutyPercent > 100 {
		return nil, fmt.Errorf("buzzer %s: duty [%v] outside (0, 100]", name, dutyPercent)
	}
	b := &Buzzer{
		name:    name,
		gpioPin: pin,
		duty:    DutyFromPercent(dutyPercent),
		freq:    physic.Frequency(frequencyHz) * physic.Hertz,
	}
	logger.Infof("Creating new buzzer on pin [%v] called [%v] tone [%v] duty [%v]", pin, name, b.freq, b.duty)
	if err := b.Off(); err != nil {
		return nil, err
	}
	return b, nil
}

func DutyFromPercent(p float64) gpio.Duty {
	return gpio.Duty(float64(gpio.DutyMax) * p / 100)
}

func (b *Buzzer) Name() string {
	return b.name
}

func (b *Buzzer) On() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	var err error
	if b.freq == 0 {
		err = b.gpioPin.Out(gpio.High)
	} else {
		err = b.gpioPin.PWM(b.duty, b.freq)
	}
	if err != nil {
		return fmt.Errorf("%s on: %w", b.name, err)
	}
	b.on = true
	return nil
}

func (b *Buzzer) Off() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.gpioPin.Out(gpio.Low); err != nil {
		return fmt.Errorf("%s off: %w", b.name, err)
	}
	b.on = false
	return nil
}

func (b *Buzzer) IsOn() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.on
}
