package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/gr-butler/alarmstation/actuators"
	"github.com/gr-butler/alarmstation/alarm"
	"github.com/gr-butler/alarmstation/env"
	"github.com/gr-butler/alarmstation/metrics"
	"github.com/gr-butler/alarmstation/monitor"
	"github.com/gr-butler/alarmstation/reporting"
	"github.com/gr-butler/alarmstation/sensors"
	logger "github.com/sirupsen/logrus"
)

type alarmstation struct {
	cfg      *env.Config
	source   sensors.Source
	outputs  *actuators.Set
	loop     *monitor.Loop
	closers  []io.Closer
	testMode bool
}

// newStation wires the hardware, the status sinks and the control loop
// together from a validated configuration.
func newStation(cfg *env.Config, testMode bool, stdout io.Writer) (*alarmstation, error) {
	a := &alarmstation{cfg: cfg, testMode: testMode}

	th, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}

	logger.Info("Initialize sensor...")
	a.source, err = sensors.Init(cfg.Sensor, cfg.Cadence, testMode)
	if err != nil {
		logger.Errorf("Failed to initialise sensor!! [%v]", err)
		return nil, err
	}
	a.closers = append(a.closers, a.source)

	logger.Info("Initialize outputs...")
	a.outputs, err = actuators.Init(cfg.Outputs, testMode)
	if err != nil {
		logger.Errorf("Failed to initialise outputs!! [%v]", err)
		a.Close()
		return nil, err
	}

	reporter, err := a.reporters(stdout)
	if err != nil {
		a.Close()
		return nil, err
	}

	var faults *alarm.FaultDetector
	if cfg.Fault.Window > 0 {
		faults = alarm.NewFaultDetector(cfg.Fault.Min, cfg.Fault.Max, cfg.Fault.Window, cfg.Fault.Trips)
	}

	a.loop, err = monitor.New(monitor.Options{
		Name:       cfg.Name,
		Cadence:    cfg.Cadence,
		Thresholds: th,
		Source:     a.source,
		Outputs:    a.outputs,
		Reporter:   reporter,
		Formatter: reporting.Formatter{
			Station:      cfg.Name,
			Label:        cfg.Report.Label,
			Unit:         cfg.Report.Unit,
			ActiveText:   cfg.Report.Active,
			InactiveText: cfg.Report.Inactive,
			FaultText:    cfg.Report.Fault,
		},
		Debouncer: alarm.NewDebouncer(cfg.Policy.Confirm),
		Faults:    faults,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *alarmstation) reporters(stdout io.Writer) (reporting.Reporter, error) {
	sinks := reporting.Multi{metrics.Reporter{}}
	if a.cfg.Report.Stdout {
		if stdout == nil {
			stdout = os.Stdout
		}
		sinks = append(sinks, reporting.NewLineReporter(stdout))
	}

	if port := a.cfg.Report.Serial.Port; port != "" {
		sr, err := reporting.OpenSerial(port, a.cfg.Report.Serial.Baud)
		if err != nil {
			logger.Errorf("Failed to open serial console [%v]", err)
			return nil, err
		}
		a.closers = append(a.closers, sr)
		sinks = append(sinks, sr)
	}

	mq := a.cfg.Report.MQTT
	if mq.Broker != "" {
		if a.testMode {
			logger.Infof("TEST MODE - not publishing to [%v]", mq.Broker)
		} else {
			m, err := reporting.DialMQTT(mq.Broker, mq.ClientID, mq.Topic, mq.QoS, mq.Timeout)
			if err != nil {
				logger.Errorf("Failed to connect to MQTT broker [%v]", err)
				return nil, err
			}
			a.closers = append(a.closers, m)
			sinks = append(sinks, m)
		}
	}
	return sinks, nil
}

func (a *alarmstation) run(ctx context.Context, cycles int) error {
	err := a.loop.Run(ctx, cycles)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *alarmstation) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Errorf("Close failed [%v]", err)
		}
	}
	a.closers = nil
}
