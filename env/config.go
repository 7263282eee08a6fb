package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gr-butler/alarmstation/alarm"
	"gopkg.in/yaml.v3"
)

const (
	SensorDigital     = "digital"
	SensorAnalog      = "analog"
	SensorTemperature = "temperature"

	OutputBinary = "binary"
	OutputPWM    = "pwm"

	ProfileWaterLevel  = "water-level"
	ProfileGasDigital  = "gas-digital"
	ProfileGasAnalog   = "gas-analog"
	ProfileTempBlink   = "temperature-blink"
	assertedLow        = "low"
	assertedHigh       = "high"
	defaultOutputLabel = "output"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnknownSensor  = errors.New("unknown sensor kind")
	ErrUnknownOutput  = errors.New("unknown output kind")
	ErrNoOutputs      = errors.New("at least one output must be configured")
	ErrBadCadence     = errors.New("cadence must be positive")
	ErrBadDuty        = errors.New("pwm duty must be in (0, 100]")
	ErrBadFault       = errors.New("fault window must hold at least trips readings")
	ErrBadAsserted    = errors.New("asserted must be low or high")
	ErrMissingPin     = errors.New("pin name required")
)

// Config describes one sensor, its decision policy and the outputs it drives.
// It is read once at start up.
type Config struct {
	Name    string         `yaml:"name"`
	Cadence time.Duration  `yaml:"cadence"`
	Sensor  SensorConfig   `yaml:"sensor"`
	Policy  PolicyConfig   `yaml:"policy"`
	Outputs []OutputConfig `yaml:"outputs"`
	Report  ReportConfig   `yaml:"report"`
	Fault   FaultConfig    `yaml:"fault"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

type SensorConfig struct {
	Kind       string    `yaml:"kind"`
	Pin        string    `yaml:"pin"`
	Pull       string    `yaml:"pull"`
	Bus        string    `yaml:"bus"`
	Address    int       `yaml:"address"`
	Channel    int       `yaml:"channel"`
	Resolution int       `yaml:"resolution"`
	Simulate   []float64 `yaml:"simulate"` // values replayed in test mode
}

type PolicyConfig struct {
	Mode            string  `yaml:"mode"`
	TriggerAbove    float64 `yaml:"trigger_above"`
	ActivateAbove   float64 `yaml:"activate_above"`
	DeactivateBelow float64 `yaml:"deactivate_below"`
	Asserted        string  `yaml:"asserted"`
	Confirm         int     `yaml:"confirm"`
}

type OutputConfig struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Pin         string  `yaml:"pin"`
	FrequencyHz int     `yaml:"frequency_hz"`
	DutyPercent float64 `yaml:"duty_percent"`
}

type ReportConfig struct {
	Label    string       `yaml:"label"`
	Unit     string       `yaml:"unit"`
	Active   string       `yaml:"active"`
	Inactive string       `yaml:"inactive"`
	Fault    string       `yaml:"fault"`
	Stdout   bool         `yaml:"stdout"`
	Serial   SerialConfig `yaml:"serial"`
	MQTT     MQTTConfig   `yaml:"mqtt"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	QoS      byte          `yaml:"qos"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FaultConfig enables the out of range detector when Window > 0.
type FaultConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Window int     `yaml:"window"`
	Trips  int     `yaml:"trips"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

var profiles = map[string]func() *Config{
	ProfileWaterLevel: func() *Config {
		return &Config{
			Name:    ProfileWaterLevel,
			Cadence: DefaultCadence,
			Sensor:  analogSensor([]float64{400, 842, 650, 300}),
			Policy:  PolicyConfig{Mode: "single", TriggerAbove: WaterLevelThreshold},
			Outputs: []OutputConfig{
				{Name: "LED", Kind: OutputBinary, Pin: AlarmLed},
				{Name: "Buzzer", Kind: OutputBinary, Pin: Buzzer},
			},
			Report: ReportConfig{
				Label:    DefaultStatusLabel,
				Active:   "Water level high! LED ON, Buzzer ON",
				Inactive: "Water level normal. LED OFF, Buzzer OFF",
				Stdout:   true,
			},
			Fault: FaultConfig{Min: 0, Max: ADCMaxValue},
		}
	},
	ProfileGasDigital: func() *Config {
		return &Config{
			Name:    ProfileGasDigital,
			Cadence: DefaultCadence,
			Sensor: SensorConfig{
				Kind:     SensorDigital,
				Pin:      GasSensorIn,
				Pull:     "up",
				Simulate: []float64{1, 0, 0, 1},
			},
			Policy: PolicyConfig{Mode: "digital", Asserted: assertedLow},
			Outputs: []OutputConfig{
				{Name: "Buzzer", Kind: OutputPWM, Pin: Buzzer, FrequencyHz: BuzzerFrequencyHz, DutyPercent: BuzzerDutyPercent},
			},
			Report: ReportConfig{
				Label:    "Gas Sensor Value",
				Active:   "Gas detected! Buzzer ON",
				Inactive: "No gas detected. Buzzer OFF",
				Stdout:   true,
			},
			Fault: FaultConfig{Min: 0, Max: 1},
		}
	},
	ProfileGasAnalog: func() *Config {
		return &Config{
			Name:    ProfileGasAnalog,
			Cadence: DefaultCadence,
			Sensor:  analogSensor([]float64{650, 720, 480}),
			// the low threshold is declared alongside the high one but the
			// single mode only ever compares against trigger_above
			Policy: PolicyConfig{Mode: "single", TriggerAbove: GasHighThreshold, DeactivateBelow: GasLowThreshold},
			Outputs: []OutputConfig{
				{Name: "Buzzer", Kind: OutputPWM, Pin: Buzzer, FrequencyHz: 1000, DutyPercent: BuzzerDutyPercent},
			},
			Report: ReportConfig{
				Label:    "Gas Sensor Value",
				Active:   "Gas Level High - Buzzer ON",
				Inactive: "Gas Level Low - Buzzer OFF",
				Stdout:   true,
			},
			Fault: FaultConfig{Min: 0, Max: ADCMaxValue},
		}
	},
	ProfileTempBlink: func() *Config {
		return &Config{
			Name:    ProfileTempBlink,
			Cadence: DefaultBlinkCadence,
			Sensor: SensorConfig{
				Kind:     SensorTemperature,
				Address:  MCP9808Addr,
				Simulate: []float64{21.5, 21.75},
			},
			Policy: PolicyConfig{Mode: "toggle"},
			Outputs: []OutputConfig{
				{Name: "LED", Kind: OutputBinary, Pin: HeartbeatLed},
			},
			Report: ReportConfig{
				Label:    "Temperature",
				Unit:     "°C",
				Active:   "LED ON",
				Inactive: "LED OFF",
				Stdout:   true,
			},
			Fault: FaultConfig{Min: MCP9808MinTempC, Max: MCP9808MaxTempC},
		}
	},
}

func analogSensor(simulate []float64) SensorConfig {
	return SensorConfig{
		Kind:       SensorAnalog,
		Address:    ADS1115Addr,
		Channel:    0,
		Resolution: ADCResolution,
		Simulate:   simulate,
	}
}

// Profiles lists the built in profile names.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Profile returns a fresh copy of a built in profile.
func Profile(name string) (*Config, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownProfile, name, strings.Join(Profiles(), ", "))
	}
	cfg := p()
	cfg.ensureDefaults()
	return cfg, nil
}

// Load starts from the named profile and overlays the YAML file at path,
// if one is given. The result is validated.
func Load(path string, profile string) (*Config, error) {
	cfg, err := Profile(profile)
	if err != nil {
		return nil, err
	}

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if broker, ok := os.LookupEnv(MQTTBrokerEnv); ok && broker != "" {
		cfg.Report.MQTT.Broker = broker
	}

	cfg.ensureDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, handy for dumping a profile to start
// a custom file from.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) ensureDefaults() {
	if c.Sensor.Kind == SensorAnalog && c.Sensor.Resolution == 0 {
		c.Sensor.Resolution = ADCResolution
	}
	if c.Sensor.Kind == SensorAnalog && c.Sensor.Address == 0 {
		c.Sensor.Address = ADS1115Addr
	}
	if c.Sensor.Kind == SensorTemperature && c.Sensor.Address == 0 {
		c.Sensor.Address = MCP9808Addr
	}
	for i := range c.Outputs {
		if c.Outputs[i].Kind == "" {
			c.Outputs[i].Kind = OutputBinary
		}
		if c.Outputs[i].Name == "" {
			c.Outputs[i].Name = fmt.Sprintf("%s%d", defaultOutputLabel, i)
		}
		if c.Outputs[i].Kind == OutputPWM && c.Outputs[i].DutyPercent == 0 {
			c.Outputs[i].DutyPercent = BuzzerDutyPercent
		}
	}
	if c.Report.Label == "" {
		c.Report.Label = DefaultStatusLabel
	}
	if c.Report.Fault == "" {
		c.Report.Fault = DefaultFaultText
	}
	if c.Report.Serial.Baud == 0 {
		c.Report.Serial.Baud = SerialBaudRate
	}
	if c.Report.MQTT.Topic == "" {
		c.Report.MQTT.Topic = MQTTTopic
	}
	if c.Report.MQTT.ClientID == "" {
		c.Report.MQTT.ClientID = MQTTClientID
	}
	if c.Report.MQTT.Timeout == 0 {
		c.Report.MQTT.Timeout = MQTTTimeout
	}
	if c.Fault.Window > 0 && c.Fault.Trips == 0 {
		c.Fault.Trips = c.Fault.Window
	}
}

// Validate checks everything that would otherwise leave the station stuck
// permanently on or permanently off.
func (c *Config) Validate() error {
	if c.Cadence <= 0 {
		return fmt.Errorf("%w: got [%v]", ErrBadCadence, c.Cadence)
	}

	switch c.Sensor.Kind {
	case SensorDigital:
		if c.Sensor.Pin == "" {
			return fmt.Errorf("sensor: %w", ErrMissingPin)
		}
	case SensorAnalog, SensorTemperature:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSensor, c.Sensor.Kind)
	}

	th, err := c.Thresholds()
	if err != nil {
		return err
	}
	if err := th.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	if len(c.Outputs) == 0 {
		return ErrNoOutputs
	}
	for _, o := range c.Outputs {
		if o.Pin == "" {
			return fmt.Errorf("output %s: %w", o.Name, ErrMissingPin)
		}
		switch o.Kind {
		case OutputBinary:
		case OutputPWM:
			if o.DutyPercent <= 0 || o.DutyPercent > 100 {
				return fmt.Errorf("output %s: %w: got [%v]", o.Name, ErrBadDuty, o.DutyPercent)
			}
		default:
			return fmt.Errorf("output %s: %w: %q", o.Name, ErrUnknownOutput, o.Kind)
		}
	}

	if c.Fault.Window < 0 || (c.Fault.Window > 0 && (c.Fault.Trips < 1 || c.Fault.Trips > c.Fault.Window)) {
		return fmt.Errorf("%w: window [%v] trips [%v]", ErrBadFault, c.Fault.Window, c.Fault.Trips)
	}
	return nil
}

// Thresholds converts the policy section into its decision form.
func (c *Config) Thresholds() (alarm.Thresholds, error) {
	mode, err := alarm.ParseMode(c.Policy.Mode)
	if err != nil {
		return alarm.Thresholds{}, fmt.Errorf("policy: %w", err)
	}
	th := alarm.Thresholds{
		Mode:            mode,
		TriggerAbove:    c.Policy.TriggerAbove,
		ActivateAbove:   c.Policy.ActivateAbove,
		DeactivateBelow: c.Policy.DeactivateBelow,
	}
	if mode == alarm.ModeDigital {
		switch strings.ToLower(c.Policy.Asserted) {
		case assertedLow, "":
			th.Asserted = 0
		case assertedHigh:
			th.Asserted = 1
		default:
			return alarm.Thresholds{}, fmt.Errorf("policy: %w: %q", ErrBadAsserted, c.Policy.Asserted)
		}
	}
	return th, nil
}
