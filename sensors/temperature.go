package sensors

import (
	"fmt"
	"math"

	"github.com/gr-butler/alarmstation/alarm"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

type TemperatureC float64

func (t TemperatureC) Float64() float64 {
	return float64(t)
}

type envSensor interface {
	Sense(e *physic.Env) error
	Halt() error
}

// TemperatureSource reports degrees Celsius rounded to 0.01.
type TemperatureSource struct {
	dev envSensor
	bus i2c.BusCloser
}

func NewTemperatureSource(dev envSensor) *TemperatureSource {
	return &TemperatureSource{dev: dev}
}

func (t *TemperatureSource) Read() (alarm.Reading, error) {
	e := physic.Env{}
	if err := t.dev.Sense(&e); err != nil {
		return alarm.Reading{Kind: alarm.Analog}, fmt.Errorf("temperature read: %w", err)
	}
	c := TemperatureC(math.Round(e.Temperature.Celsius()*100) / 100)
	return alarm.Reading{
		Kind:  alarm.Analog,
		Value: c.Float64(),
		Raw:   int64(e.Temperature),
	}, nil
}

func (t *TemperatureSource) Kind() alarm.Kind {
	return alarm.Analog
}

func (t *TemperatureSource) Close() error {
	err := t.dev.Halt()
	if t.bus != nil {
		if cerr := t.bus.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
