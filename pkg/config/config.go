package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the switch configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Switch  SwitchConfig  `yaml:"switch"`
	Buttons ButtonsConfig `yaml:"buttons"`
	Relay   RelayConfig   `yaml:"relay"`
	LED     LEDConfig     `yaml:"led"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains the serial channels of the lower device and both upper targets.
type SerialConfig struct {
	Lower      string `yaml:"lower"`
	UpperA     string `yaml:"upper_a"`
	UpperB     string `yaml:"upper_b"`
	BaudRate   int    `yaml:"baud_rate"`
	BufferSize int    `yaml:"buffer_size"` // Read chunk size per relay iteration
}

// SwitchConfig contains connection switch timing.
type SwitchConfig struct {
	Lockout time.Duration `yaml:"lockout"` // Minimum time between accepted switch/toggle events
	Settle  time.Duration `yaml:"settle"`  // Delay between effect cancellation and the state flip
}

// ButtonsConfig contains debouncing and long-press parameters.
type ButtonsConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	LongPress   time.Duration `yaml:"long_press"`
	PollPeriod  time.Duration `yaml:"poll_period"`
	EventBuffer int           `yaml:"event_buffer"`
	ResetCue    time.Duration `yaml:"reset_cue"` // Red flash shown before restart
}

// RelayConfig contains the relay loop parameters.
type RelayConfig struct {
	Sleep time.Duration `yaml:"sleep"` // Pause between relay iterations
}

// MockConfig contains parameters for the in-memory channels used by the
// desktop panel when no adapters are attached.
type MockConfig struct {
	Period     time.Duration `yaml:"period"`      // Interval of synthetic mouse frames on the lower channel, 0 disables
	Echo       bool          `yaml:"echo"`        // Upper channels send back what they receive
	BufferSize int           `yaml:"buffer_size"` // Receive buffer of each mock channel
}

// LEDConfig contains burst and breathing effect parameters.
type LEDConfig struct {
	BurstColors    int           `yaml:"burst_colors"`    // Colors picked per burst
	BurstFlashes   int           `yaml:"burst_flashes"`   // Flashes per color
	BurstPeriod    time.Duration `yaml:"burst_period"`    // Flash period
	BurstOn        time.Duration `yaml:"burst_on"`        // On-time within one flash period
	BurstPause     time.Duration `yaml:"burst_pause"`     // Pause between color groups
	BreathPerMin   float32       `yaml:"breath_per_min"`  // Breathing cycles per minute
	BreathStep     time.Duration `yaml:"breath_step"`     // Duration of one brightness step
	BreathMax      uint8         `yaml:"breath_max"`      // Peak brightness
	BreathExponent float32       `yaml:"breath_exponent"` // Envelope sharpening exponent
	BreathDark     time.Duration `yaml:"breath_dark"`     // Dark pause after each cycle
}

// Default returns the configuration the firmware ships with.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Lower:      "/dev/ttyUSB0",
			UpperA:     "/dev/ttyUSB1",
			UpperB:     "/dev/ttyUSB2",
			BaudRate:   115200,
			BufferSize: 256,
		},
		Switch: SwitchConfig{
			Lockout: 1500 * time.Millisecond,
			Settle:  10 * time.Millisecond,
		},
		Buttons: ButtonsConfig{
			Debounce:    50 * time.Millisecond,
			LongPress:   3000 * time.Millisecond,
			PollPeriod:  100 * time.Millisecond,
			EventBuffer: 8,
			ResetCue:    500 * time.Millisecond,
		},
		Relay: RelayConfig{
			Sleep: 2 * time.Millisecond,
		},
		LED: LEDConfig{
			BurstColors:    3,
			BurstFlashes:   10,
			BurstPeriod:    80 * time.Millisecond,
			BurstOn:        40 * time.Millisecond,
			BurstPause:     50 * time.Millisecond,
			BreathPerMin:   7.5,
			BreathStep:     10 * time.Millisecond,
			BreathMax:      155,
			BreathExponent: 2.0,
			BreathDark:     500 * time.Millisecond,
		},
		Mock: MockConfig{
			Period:     20 * time.Millisecond,
			Echo:       true,
			BufferSize: 1024,
		},
	}
}

// BreathPeriod returns the duration of one full rise and fall.
func (c *LEDConfig) BreathPeriod() time.Duration {
	if c.BreathPerMin <= 0 {
		return 0
	}
	return time.Duration(2*60*1000/c.BreathPerMin) * time.Millisecond
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults replaces zero values with defaults.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize <= 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.Switch.Lockout == 0 {
		c.Switch.Lockout = def.Switch.Lockout
	}
	if c.Switch.Settle == 0 {
		c.Switch.Settle = def.Switch.Settle
	}

	if c.Buttons.Debounce == 0 {
		c.Buttons.Debounce = def.Buttons.Debounce
	}
	if c.Buttons.LongPress == 0 {
		c.Buttons.LongPress = def.Buttons.LongPress
	}
	if c.Buttons.PollPeriod == 0 {
		c.Buttons.PollPeriod = def.Buttons.PollPeriod
	}
	if c.Buttons.EventBuffer <= 0 {
		c.Buttons.EventBuffer = def.Buttons.EventBuffer
	}
	if c.Buttons.ResetCue == 0 {
		c.Buttons.ResetCue = def.Buttons.ResetCue
	}

	if c.Relay.Sleep == 0 {
		c.Relay.Sleep = def.Relay.Sleep
	}

	if c.LED.BurstColors <= 0 {
		c.LED.BurstColors = def.LED.BurstColors
	}
	if c.LED.BurstFlashes <= 0 {
		c.LED.BurstFlashes = def.LED.BurstFlashes
	}
	if c.LED.BurstPeriod == 0 {
		c.LED.BurstPeriod = def.LED.BurstPeriod
	}
	if c.LED.BurstOn == 0 || c.LED.BurstOn > c.LED.BurstPeriod {
		c.LED.BurstOn = c.LED.BurstPeriod / 2
	}
	if c.LED.BurstPause == 0 {
		c.LED.BurstPause = def.LED.BurstPause
	}
	if c.LED.BreathPerMin <= 0 {
		c.LED.BreathPerMin = def.LED.BreathPerMin
	}
	if c.LED.BreathStep == 0 {
		c.LED.BreathStep = def.LED.BreathStep
	}
	if c.LED.BreathMax == 0 {
		c.LED.BreathMax = def.LED.BreathMax
	}
	if c.LED.BreathExponent == 0 {
		c.LED.BreathExponent = def.LED.BreathExponent
	}
	if c.LED.BreathDark == 0 {
		c.LED.BreathDark = def.LED.BreathDark
	}

	if c.Mock.BufferSize <= 0 {
		c.Mock.BufferSize = def.Mock.BufferSize
	}
}
