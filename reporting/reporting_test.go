package reporting

import (
	"bytes"
	"errors"
	"net/url"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gr-butler/alarmstation/alarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

var waterLevel = Formatter{
	Label:        "Sensor Value",
	ActiveText:   "Water level high! LED ON, Buzzer ON",
	InactiveText: "Water level normal. LED OFF, Buzzer OFF",
	FaultText:    "Sensor fault! Outputs OFF",
}

func reading(v float64) alarm.Reading {
	return alarm.Reading{Kind: alarm.Analog, Value: v, Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestFormatterBuild(t *testing.T) {
	r := waterLevel.Build(reading(842), alarm.Active, false)
	assert.Equal(t, "Sensor Value: 842", r.ValueLine())
	assert.Equal(t, "Water level high! LED ON, Buzzer ON", r.Message)
	assert.Equal(t, alarm.Active, r.State)

	r = waterLevel.Build(reading(400), alarm.Inactive, false)
	assert.Equal(t, "Water level normal. LED OFF, Buzzer OFF", r.Message)

	r = waterLevel.Build(reading(9999), alarm.Inactive, true)
	assert.Equal(t, "Sensor fault! Outputs OFF", r.Message)
	assert.True(t, r.Fault)
}

func TestValueLineUnits(t *testing.T) {
	f := Formatter{Label: "Temperature", Unit: "°C"}
	assert.Equal(t, "Temperature: 21.75°C", f.Build(reading(21.75), alarm.Active, false).ValueLine())
}

func TestLineReporter(t *testing.T) {
	var out bytes.Buffer
	lr := NewLineReporter(&out)

	require.NoError(t, lr.Emit(waterLevel.Build(reading(842), alarm.Active, false)))
	require.NoError(t, lr.Emit(waterLevel.Build(reading(400), alarm.Inactive, false)))

	assert.Equal(t, "Sensor Value: 842\nWater level high! LED ON, Buzzer ON\n"+
		"Sensor Value: 400\nWater level normal. LED OFF, Buzzer OFF\n", out.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestLineReporterError(t *testing.T) {
	lr := NewLineReporter(brokenWriter{})
	require.Error(t, lr.Emit(Report{}))
}

type fakePort struct {
	serial.Port
	out    bytes.Buffer
	closed bool
}

func (p *fakePort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

func TestSerialReporterUsesCRLF(t *testing.T) {
	port := &fakePort{}
	sr := NewSerialReporter(port)

	require.NoError(t, sr.Emit(Formatter{
		Label:      "Gas Sensor Value",
		ActiveText: "Gas detected! Buzzer ON",
	}.Build(alarm.Reading{Kind: alarm.Digital}, alarm.Active, false)))

	assert.Equal(t, "Gas Sensor Value: 0\r\nGas detected! Buzzer ON\r\n", port.out.String())
	require.NoError(t, sr.Close())
	assert.True(t, port.closed)
}

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t *fakeToken) Error() error { return t.err }

type fakePublisher struct {
	topic   string
	qos     byte
	payload interface{}
	token   *fakeToken
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topic = topic
	p.qos = qos
	p.payload = payload
	return p.token
}

func TestMQTTReporter(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{}}
	m := NewMQTTReporter(pub, "alarmstation/status", 1, time.Second)

	rep := waterLevel.Build(reading(842), alarm.Active, false)
	rep.Station = "water-level"
	require.NoError(t, m.Emit(rep))

	assert.Equal(t, "alarmstation/status", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	vals, err := url.ParseQuery(pub.payload.(string))
	require.NoError(t, err)
	assert.Equal(t, "842", vals.Get("value"))
	assert.Equal(t, "active", vals.Get("state"))
	assert.Equal(t, "Sensor Value", vals.Get("label"))
	assert.Equal(t, "water-level", vals.Get("station"))
	assert.Equal(t, "Water level high! LED ON, Buzzer ON", vals.Get("message"))
	assert.Equal(t, "2024-03-01T09:00:00Z", vals.Get("time"))
	assert.False(t, vals.Has("fault"))
	require.NoError(t, m.Close())
}

func TestMQTTReporterErrors(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{timeout: true}}
	m := NewMQTTReporter(pub, "t", 0, time.Millisecond)
	require.ErrorIs(t, m.Emit(Report{}), ErrPublishTimeout)

	pub.token = &fakeToken{err: errors.New("not connected")}
	require.ErrorIs(t, m.Emit(Report{}), pub.token.err)
}

type countingReporter struct {
	n   int
	err error
}

func (c *countingReporter) Emit(Report) error {
	c.n++
	return c.err
}

func TestMulti(t *testing.T) {
	a := &countingReporter{err: errors.New("a down")}
	b := &countingReporter{}
	m := Multi{a, b, Discard{}}

	err := m.Emit(Report{})
	require.ErrorIs(t, err, a.err)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n, "a failing reporter must not starve the rest")

	require.NoError(t, Multi{}.Emit(Report{}))
}
