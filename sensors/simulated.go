package sensors

import (
	"sync"

	"github.com/gr-butler/alarmstation/alarm"
)

// Simulated replays a fixed list of values, wrapping round at the end. It
// stands in for the hardware in test mode.
type Simulated struct {
	kind   alarm.Kind
	values []float64
	next   int
	lock   sync.Mutex
}

func NewSimulated(kind alarm.Kind, values ...float64) *Simulated {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Simulated{kind: kind, values: values}
}

func (s *Simulated) Read() (alarm.Reading, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	v := s.values[s.next]
	s.next += 1
	if s.next == len(s.values) {
		s.next = 0
	}
	return alarm.Reading{Kind: s.kind, Value: v, Raw: int64(v)}, nil
}

func (s *Simulated) Kind() alarm.Kind {
	return s.kind
}

func (s *Simulated) Close() error {
	return nil
}
