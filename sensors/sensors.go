package sensors

import (
	"fmt"
	"time"

	"github.com/gr-butler/alarmstation/alarm"
	"github.com/gr-butler/alarmstation/env"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/mcp9808"
	"periph.io/x/host/v3"
)

var adcChannels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADS1115 full scale for a 5V supplied divider.
const adcMaxVoltage = 5 * physic.Volt

// Init brings up the host drivers and opens the configured sensor. In test
// mode no hardware is touched and the configured simulation values are
// replayed instead.
func Init(cfg env.SensorConfig, cadence time.Duration, test bool) (Source, error) {
	if test {
		kind := alarm.Analog
		if cfg.Kind == env.SensorDigital {
			kind = alarm.Digital
		}
		logger.Infof("TEST MODE sensor [%v] replaying %v", cfg.Kind, cfg.Simulate)
		return NewSimulated(kind, cfg.Simulate...), nil
	}

	if _, err := host.Init(); err != nil {
		logger.Errorf("Failed to init host drivers [%v]", err)
		return nil, err
	}

	switch cfg.Kind {
	case env.SensorDigital:
		return openDigital(cfg)
	case env.SensorAnalog:
		return openAnalog(cfg, cadence)
	case env.SensorTemperature:
		return openTemperature(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", env.ErrUnknownSensor, cfg.Kind)
	}
}

func openDigital(cfg env.SensorConfig) (Source, error) {
	pin := gpioreg.ByName(cfg.Pin)
	if pin == nil {
		logger.Errorf("Failed to find %v - sensor pin", cfg.Pin)
		return nil, fmt.Errorf("no such pin %q", cfg.Pin)
	}
	logger.Infof("%s: %s", pin, pin.Function())
	pull, err := ParsePull(cfg.Pull)
	if err != nil {
		return nil, err
	}
	return NewDigitalSource(pin, pull)
}

func openAnalog(cfg env.SensorConfig, cadence time.Duration) (Source, error) {
	if cfg.Channel < 0 || cfg.Channel >= len(adcChannels) {
		return nil, fmt.Errorf("adc channel [%v] out of range", cfg.Channel)
	}
	bus, err := openBus(cfg.Bus)
	if err != nil {
		return nil, err
	}

	logger.Infof("Starting ADS1115 ADC I2C [%x] channel [%v]", cfg.Address, cfg.Channel)
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: uint16(cfg.Address)})
	if err != nil {
		logger.Errorf("Failed to open ADS1115 [%v]", err)
		_ = bus.Close()
		return nil, err
	}

	pin, err := adc.PinForChannel(adcChannels[cfg.Channel], adcMaxVoltage, sampleFrequency(cadence), ads1x15.BestQuality)
	if err != nil {
		logger.Errorf("Failed to open ADC channel [%v]", err)
		_ = bus.Close()
		return nil, err
	}

	src, err := NewAnalogSource(pin, cfg.Resolution)
	if err != nil {
		_ = pin.Halt()
		_ = bus.Close()
		return nil, err
	}
	src.bus = bus
	return src, nil
}

func openTemperature(cfg env.SensorConfig) (Source, error) {
	bus, err := openBus(cfg.Bus)
	if err != nil {
		return nil, err
	}

	logger.Infof("Starting MCP9808 Temperature Sensor [%x]", cfg.Address)
	dev, err := mcp9808.New(bus, &mcp9808.Opts{Addr: cfg.Address, Res: mcp9808.High})
	if err != nil {
		logger.Errorf("Failed to open MCP9808 sensor: %v", err)
		_ = bus.Close()
		return nil, err
	}
	src := NewTemperatureSource(dev)
	src.bus = bus
	return src, nil
}

func openBus(name string) (i2c.BusCloser, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		logger.Errorf("Failed to open I²C [%v]", err)
		return nil, err
	}
	return bus, nil
}

// sampleFrequency asks the ADC for at least one conversion per cycle.
func sampleFrequency(cadence time.Duration) physic.Frequency {
	if cadence <= 0 {
		return physic.Hertz
	}
	hz := int64(time.Second / cadence)
	if hz < 1 {
		hz = 1
	}
	return physic.Frequency(hz) * physic.Hertz
}
