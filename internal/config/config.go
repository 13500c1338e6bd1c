package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker             string
	MQTTClientIDProducer   string
	MQTTClientIDNMEA       string
	MQTTClientIDStabilizer string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDDisplay    string

	// Topics
	TopicGravity     string
	TopicTransform   string
	TopicControl     string
	TopicDiagnostics string

	// IMU Hardware (SPI accelerometer)
	IMUSPIDevice string
	IMUCSPin     string

	// Serial IMU (NMEA XDR)
	IMUSerialPort string
	IMUBaudRate   int

	// Video surface geometry
	VideoWidth  float64
	VideoHeight float64
	ViewWidth   float64
	ViewHeight  float64

	// Stabilizer tuning. Nil means the key is absent and the built-in
	// default applies; an explicit 0 in the file is kept.
	MinDecay        *float64
	FlatThreshold   *float64
	MinLockAngle    *float64
	MaxLockAngle    *float64
	UnlockDurationS *float64

	// Timing
	SampleInterval int // milliseconds
	FrameInterval  int // milliseconds
	DiagInterval   int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access.
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func parseFloatPtr(key, value string) (*float64, error) {
	f, err := parseFloat(key, value)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_NMEA":
		c.MQTTClientIDNMEA = value
	case "MQTT_CLIENT_ID_STABILIZER":
		c.MQTTClientIDStabilizer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_GRAVITY":
		c.TopicGravity = value
	case "TOPIC_TRANSFORM":
		c.TopicTransform = value
	case "TOPIC_CONTROL":
		c.TopicControl = value
	case "TOPIC_DIAGNOSTICS":
		c.TopicDiagnostics = value

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_SERIAL_PORT":
		c.IMUSerialPort = value
	case "IMU_BAUD_RATE":
		c.IMUBaudRate, err = parseInt(key, value)

	// Video surface geometry
	case "VIDEO_WIDTH":
		c.VideoWidth, err = parseFloat(key, value)
	case "VIDEO_HEIGHT":
		c.VideoHeight, err = parseFloat(key, value)
	case "VIEW_WIDTH":
		c.ViewWidth, err = parseFloat(key, value)
	case "VIEW_HEIGHT":
		c.ViewHeight, err = parseFloat(key, value)

	// Stabilizer tuning
	case "MIN_DECAY":
		c.MinDecay, err = parseFloatPtr(key, value)
		if err == nil && (*c.MinDecay < 0 || *c.MinDecay > 1) {
			return fmt.Errorf("MIN_DECAY must be in [0, 1], got %g", *c.MinDecay)
		}
	case "FLAT_THRESHOLD":
		c.FlatThreshold, err = parseFloatPtr(key, value)
	case "MIN_LOCK_ANGLE":
		c.MinLockAngle, err = parseFloatPtr(key, value)
	case "MAX_LOCK_ANGLE":
		c.MaxLockAngle, err = parseFloatPtr(key, value)
	case "UNLOCK_DURATION":
		c.UnlockDurationS, err = parseFloatPtr(key, value)

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseInt(key, value)
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)
	case "DIAG_INTERVAL":
		c.DiagInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGravity == "" {
		return fmt.Errorf("TOPIC_GRAVITY is required")
	}
	if c.TopicTransform == "" {
		return fmt.Errorf("TOPIC_TRANSFORM is required")
	}
	if c.VideoWidth <= 0 || c.VideoHeight <= 0 {
		return fmt.Errorf("VIDEO_WIDTH and VIDEO_HEIGHT are required and must be positive")
	}
	if c.ViewWidth <= 0 || c.ViewHeight <= 0 {
		return fmt.Errorf("VIEW_WIDTH and VIEW_HEIGHT are required and must be positive")
	}
	if c.MinLockAngle != nil && c.MaxLockAngle != nil && *c.MinLockAngle >= *c.MaxLockAngle {
		return fmt.Errorf("MIN_LOCK_ANGLE must be less than MAX_LOCK_ANGLE")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
