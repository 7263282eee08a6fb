package sensors

import (
	"fmt"

	"github.com/gr-butler/alarmstation/alarm"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
)

// ADS1115 single ended conversions are 15 bits of magnitude.
const adcNativeBits = 15

type adcPin interface {
	Read() (analog.Sample, error)
	Halt() error
}

// AnalogSource reads one ADC channel and scales the raw count down to the
// configured resolution so thresholds can be written in the same units as
// the original 12 bit board (0-4095).
type AnalogSource struct {
	adc   adcPin
	shift uint
	bus   i2c.BusCloser
}

func NewAnalogSource(pin adcPin, resolution int) (*AnalogSource, error) {
	if pin == nil {
		return nil, fmt.Errorf("analog source: no adc pin")
	}
	if resolution < 1 || resolution > adcNativeBits {
		return nil, fmt.Errorf("analog source: resolution [%v] outside 1-%v bits", resolution, adcNativeBits)
	}
	return &AnalogSource{
		adc:   pin,
		shift: uint(adcNativeBits - resolution),
	}, nil
}

func (a *AnalogSource) Read() (alarm.Reading, error) {
	sample, err := a.adc.Read()
	if err != nil {
		return alarm.Reading{Kind: alarm.Analog}, fmt.Errorf("adc read: %w", err)
	}
	raw := int64(sample.Raw)
	if raw < 0 {
		// single ended input sitting at ground can read a count or two negative
		raw = 0
	}
	logger.Debugf("ADC raw [%v] volts [%v]", sample.Raw, sample.V)
	return alarm.Reading{
		Kind:  alarm.Analog,
		Value: float64(raw >> a.shift),
		Raw:   int64(sample.Raw),
	}, nil
}

func (a *AnalogSource) Kind() alarm.Kind {
	return alarm.Analog
}

func (a *AnalogSource) Close() error {
	err := a.adc.Halt()
	if a.bus != nil {
		if cerr := a.bus.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
