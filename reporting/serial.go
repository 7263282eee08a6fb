package reporting

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// SerialReporter prints the status lines on a serial console, CRLF
// terminated like a microcontroller's println.
type SerialReporter struct {
	*LineReporter
	port serial.Port
}

func OpenSerial(portName string, baud int) (*SerialReporter, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	logger.Infof("Status console on [%v] at [%v] baud", portName, baud)
	return NewSerialReporter(port), nil
}

func NewSerialReporter(port serial.Port) *SerialReporter {
	lr := NewLineReporter(port)
	lr.lineEnding = "\r\n"
	return &SerialReporter{LineReporter: lr, port: port}
}

func (s *SerialReporter) Close() error {
	return s.port.Close()
}
