package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gr-butler/alarmstation/alarm"
	"github.com/gr-butler/alarmstation/metrics"
	"github.com/gr-butler/alarmstation/reporting"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

type Source interface {
	Read() (alarm.Reading, error)
}

type Outputs interface {
	Apply(state alarm.State) error
}

var (
	ErrNoSource  = errors.New("no sensor source")
	ErrNoOutputs = errors.New("no outputs")
	ErrCadence   = errors.New("cadence must be positive")
)

type Options struct {
	Name       string
	Cadence    time.Duration
	Thresholds alarm.Thresholds
	Source     Source
	Outputs    Outputs
	Reporter   reporting.Reporter
	Formatter  reporting.Formatter
	Clock      clockwork.Clock
	Debouncer  *alarm.Debouncer
	Faults     *alarm.FaultDetector
}

// Loop owns the alarm state. Everything else it touches is handed in.
type Loop struct {
	name       string
	cadence    time.Duration
	thresholds alarm.Thresholds
	source     Source
	outputs    Outputs
	reporter   reporting.Reporter
	formatter  reporting.Formatter
	clock      clockwork.Clock
	debouncer  *alarm.Debouncer
	faults     *alarm.FaultDetector

	lock    sync.Mutex
	state   alarm.State
	faulted bool
	cycles  int
}

func New(opts Options) (*Loop, error) {
	if opts.Source == nil {
		return nil, ErrNoSource
	}
	if opts.Outputs == nil {
		return nil, ErrNoOutputs
	}
	if opts.Cadence <= 0 {
		return nil, fmt.Errorf("%w: got [%v]", ErrCadence, opts.Cadence)
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Reporter == nil {
		opts.Reporter = reporting.Discard{}
	}
	if opts.Formatter.Station == "" {
		opts.Formatter.Station = opts.Name
	}
	return &Loop{
		name:       opts.Name,
		cadence:    opts.Cadence,
		thresholds: opts.Thresholds,
		source:     opts.Source,
		outputs:    opts.Outputs,
		reporter:   opts.Reporter,
		formatter:  opts.Formatter,
		clock:      opts.Clock,
		debouncer:  opts.Debouncer,
		faults:     opts.Faults,
		state:      alarm.Inactive,
	}, nil
}

func (l *Loop) State() alarm.State {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Cycles is the number of completed cycles, skipped ones included.
func (l *Loop) Cycles() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.cycles
}

// Step runs a single cycle: read, evaluate, drive the outputs, then report.
// A failed read skips the rest of the cycle and leaves outputs untouched.
func (l *Loop) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.cycles += 1

	r, err := l.source.Read()
	if err != nil {
		metrics.ReadError()
		logger.Errorf("[%v] sensor read failed, skipping cycle [%v]", l.name, err)
		return fmt.Errorf("read sensor: %w", err)
	}
	if r.Time.IsZero() {
		r.Time = l.clock.Now()
	}

	previous := l.state
	faulted := l.faults.Observe(r)
	var next alarm.State
	if faulted {
		// fail safe, never sound the alarm on a broken sensor
		next = alarm.Inactive
	} else {
		next = l.debouncer.Filter(previous, l.thresholds.Evaluate(r, previous))
	}

	var errs []error
	if err := l.outputs.Apply(next); err != nil {
		errs = append(errs, fmt.Errorf("apply [%v]: %w", next, err))
	}

	rep := l.formatter.Build(r, next, faulted)
	rep.Changed = next != previous
	if err := l.reporter.Emit(rep); err != nil {
		logger.Errorf("[%v] failed to emit status [%v]", l.name, err)
		errs = append(errs, fmt.Errorf("emit: %w", err))
	}

	if faulted != l.faulted {
		if faulted {
			logger.Warnf("[%v] sensor fault, reading [%v] outside [%v..%v]", l.name, r.Value, l.faults.Min, l.faults.Max)
		} else {
			logger.Infof("[%v] sensor fault cleared", l.name)
		}
	}
	if rep.Changed {
		logger.Infof("[%v] alarm [%v] -> [%v] at [%v]", l.name, previous, next, r.Value)
	}
	logger.Debugf("[%v] cycle [%v] value [%v] state [%v]", l.name, l.cycles, r.Value, next)

	l.state = next
	l.faulted = faulted
	return errors.Join(errs...)
}

// Run drives the outputs to rest, then runs one cycle straight away and one
// per cadence tick until ctx is done or cycles cycles have run. Zero cycles
// means run until cancelled. The outputs are left off on return.
func (l *Loop) Run(ctx context.Context, cycles int) error {
	if err := l.outputs.Apply(alarm.Inactive); err != nil {
		logger.Errorf("[%v] failed to drive outputs to rest [%v]", l.name, err)
	}
	defer func() {
		if err := l.outputs.Apply(alarm.Inactive); err != nil {
			logger.Errorf("[%v] failed to drive outputs off [%v]", l.name, err)
		}
	}()

	ticker := l.clock.NewTicker(l.cadence)
	defer ticker.Stop()

	logger.Infof("[%v] starting control loop, cadence [%v] mode [%v]", l.name, l.cadence, l.thresholds.Mode)
	ran := 0
	for {
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debugf("[%v] cycle error [%v]", l.name, err)
		}
		ran += 1
		if cycles > 0 && ran >= cycles {
			logger.Infof("[%v] completed [%v] cycles", l.name, ran)
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Infof("[%v] stopping control loop [%v]", l.name, ctx.Err())
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}
