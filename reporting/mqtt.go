package reporting

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/go-querystring/query"
	logger "github.com/sirupsen/logrus"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTReporter publishes each report as a url encoded form, e.g.
// label=Sensor+Value&message=...&state=active&value=842
type MQTTReporter struct {
	client  publisher
	conn    mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

func NewMQTTReporter(client publisher, topic string, qos byte, timeout time.Duration) *MQTTReporter {
	return &MQTTReporter{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: timeout,
	}
}

// DialMQTT connects to the broker and returns a reporter publishing on topic.
func DialMQTT(broker, clientID, topic string, qos byte, timeout time.Duration) (*MQTTReporter, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect %s: %w", broker, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, err)
	}
	logger.Infof("Publishing status to [%v] topic [%v]", broker, topic)

	m := NewMQTTReporter(client, topic, qos, timeout)
	m.conn = client
	return m, nil
}

func Payload(r Report) (string, error) {
	vals, err := query.Values(r)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return vals.Encode(), nil
}

func (m *MQTTReporter) Emit(r Report) error {
	payload, err := Payload(r)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, m.qos, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTTReporter) Close() error {
	if m.conn != nil {
		m.conn.Disconnect(250)
	}
	return nil
}
