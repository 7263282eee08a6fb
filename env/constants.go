package env

import "time"

// BCM names as registered by periph.io on the Raspberry Pi.
const (
	GPIO04 = "GPIO4"
	GPIO17 = "GPIO17"
	GPIO18 = "GPIO18" // PWM0
	GPIO23 = "GPIO23"
	GPIO27 = "GPIO27"

	GasSensorIn  = GPIO04
	AlarmLed     = GPIO17
	Buzzer       = GPIO18
	HeartbeatLed = GPIO23
)

const (
	DefaultProfile = ProfileWaterLevel

	DefaultCadence      = time.Millisecond * 100
	DefaultBlinkCadence = time.Second

	// ADS1115 single ended full scale is 15 bits, the ESP32 ADC the
	// thresholds were tuned on is 12 bits (0-4095).
	ADCResolution   = 12
	ADCMaxValue     = 1<<ADCResolution - 1
	ADS1115Addr     = 0x48
	MCP9808Addr     = 0x18
	MCP9808MinTempC = -40
	MCP9808MaxTempC = 125

	WaterLevelThreshold = 600
	GasHighThreshold    = 700
	GasLowThreshold     = 500

	BuzzerFrequencyHz  = 2000
	BuzzerDutyPercent  = 50
	SerialBaudRate     = 115200
	MQTTTopic          = "alarmstation/status"
	MQTTClientID       = "alarmstation"
	MQTTTimeout        = time.Second * 5
	MQTTBrokerEnv      = "ALARM_MQTT_BROKER"
	DefaultFaultText   = "Sensor fault! Outputs OFF"
	DefaultStatusLabel = "Sensor Value"
)
