package sensors

import (
	"github.com/gr-butler/alarmstation/alarm"
)

/*
 * A Source takes one reading from one physical input. It never interprets the
 * value; out of range or floating inputs are returned as read and left to the
 * policy and fault detector.
 */

type Source interface {
	Read() (alarm.Reading, error)
	Kind() alarm.Kind
	Close() error
}
