package smsc

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/ftl/smsc-pdu/sms"
)

// EnvPrefix is the prefix of all environment variables that are read by Load.
const EnvPrefix = "SMSC"

// Config of the core and the modem bridge.
type Config struct {
	// Direction of the TPDUs that are received, MO for a service centre, MT for a mobile station.
	Direction        string        `envconfig:"DIRECTION"         default:"MO"`
	ReassemblyTTL    time.Duration `envconfig:"REASSEMBLY_TTL"    default:"5m"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL"    default:"30s"`
	TimeoutBuffer    int           `envconfig:"TIMEOUT_BUFFER"    default:"64"`
	LogLevel         string        `envconfig:"LOG_LEVEL"         default:"info"`
	MetricsNamespace string        `envconfig:"METRICS_NAMESPACE" default:"smsc"`
	ServiceCenter    string        `envconfig:"SERVICE_CENTER"`
	// ServiceCenterPrefix lets every PDU in an envelope body start with the service centre address.
	ServiceCenterPrefix bool   `envconfig:"ENVELOPE_SMSC_PREFIX" default:"false"`
	ModemPort           string `envconfig:"MODEM_PORT"`
	ModemBaudRate       uint   `envconfig:"MODEM_BAUD_RATE"   default:"115200"`
}

// Load reads the configuration from the environment. Variables that are not set in the environment
// are taken from the given .env files, if they exist.
func Load(envFiles ...string) (*Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot read env file: %w", err)
	}

	var cfg Config
	err = envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be checked by their type.
func (c Config) Validate() error {
	if _, err := c.ReceiveDirection(); err != nil {
		return err
	}
	if _, err := c.ServiceCenterAddress(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ReassemblyTTL <= 0 {
		return fmt.Errorf("invalid reassembly TTL %v", c.ReassemblyTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval %v", c.SweepInterval)
	}
	if c.TimeoutBuffer < 0 {
		return fmt.Errorf("invalid timeout buffer size %d", c.TimeoutBuffer)
	}
	return nil
}

func (c Config) ReceiveDirection() (sms.Direction, error) {
	return sms.ParseDirection(c.Direction)
}

// ServiceCenterAddress returns the configured service centre address, or the zero address if none is configured.
func (c Config) ServiceCenterAddress() (sms.Address, error) {
	if c.ServiceCenter == "" {
		return sms.Address{}, nil
	}
	result, err := sms.ParseAddressString(c.ServiceCenter)
	if err != nil {
		return sms.Address{}, fmt.Errorf("invalid service centre address %q: %w", c.ServiceCenter, err)
	}
	if result.TON == sms.AlphanumericAddress {
		return sms.Address{}, fmt.Errorf("invalid service centre address %q: %w", c.ServiceCenter, sms.ErrInvalidAddress)
	}
	return result, nil
}

// DefaultConfig returns the configuration with all default values.
func DefaultConfig() Config {
	return Config{
		Direction:        "MO",
		ReassemblyTTL:    sms.DefaultReassemblyTTL,
		SweepInterval:    sms.DefaultSweepInterval,
		TimeoutBuffer:    sms.DefaultTimeoutBuffer,
		LogLevel:         "info",
		MetricsNamespace: "smsc",
		ModemBaudRate:    115200,
	}
}
