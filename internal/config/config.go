// Package config loads the controller configuration from configs/config.yml with THERMO_
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "THERMO"

// Driver names.
const (
	DriverSim     = "sim"
	DriverOneWire = "onewire"
	DriverGPIO    = "gpio"
	DriverNone    = "none"
	DriverMatrix  = "matrix"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	Actuator ActuatorConfig `mapstructure:"actuator"`
	Keypad   KeypadConfig   `mapstructure:"keypad"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Sim      SimConfig      `mapstructure:"sim"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// LoopConfig holds the scheduler cadences.
type LoopConfig struct {
	Control time.Duration `mapstructure:"control"`
	Status  time.Duration `mapstructure:"status"`
	Remote  time.Duration `mapstructure:"remote"`
	Poll    time.Duration `mapstructure:"poll"`
}

type SensorConfig struct {
	Driver         string        `mapstructure:"driver"`
	W1Root         string        `mapstructure:"w1_root"`
	Device         string        `mapstructure:"device"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

type ActuatorConfig struct {
	Driver     string `mapstructure:"driver"`
	Chip       string `mapstructure:"chip"`
	HeaterLine int    `mapstructure:"heater_line"`
	// PWMChip is the sysfs pwmchip directory; empty disables the servo output.
	PWMChip    string `mapstructure:"pwm_chip"`
	PWMChannel int    `mapstructure:"pwm_channel"`
}

type KeypadConfig struct {
	Driver  string `mapstructure:"driver"`
	Chip    string `mapstructure:"chip"`
	Rows    []int  `mapstructure:"rows"`
	Cols    []int  `mapstructure:"cols"`
	Console bool   `mapstructure:"console"`
}

type MQTTConfig struct {
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Topic          string        `mapstructure:"topic"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

type SimConfig struct {
	AmbientC float64 `mapstructure:"ambient_c"`
	// HeatRate and CoolRate are degrees per second.
	HeatRate float64 `mapstructure:"heat_rate"`
	CoolRate float64 `mapstructure:"cool_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "app.db")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("loop.control", time.Second)
	v.SetDefault("loop.status", 2*time.Second)
	v.SetDefault("loop.remote", time.Second)
	v.SetDefault("loop.poll", 20*time.Millisecond)

	v.SetDefault("sensor.driver", DriverSim)
	v.SetDefault("sensor.w1_root", "/sys/bus/w1/devices")
	v.SetDefault("sensor.device", "")
	v.SetDefault("sensor.startup_timeout", 5*time.Second)

	v.SetDefault("actuator.driver", DriverSim)
	v.SetDefault("actuator.chip", "gpiochip0")
	v.SetDefault("actuator.heater_line", 17)
	v.SetDefault("actuator.pwm_chip", "")
	v.SetDefault("actuator.pwm_channel", 0)

	v.SetDefault("keypad.driver", DriverNone)
	v.SetDefault("keypad.chip", "gpiochip0")
	v.SetDefault("keypad.rows", []int{5, 6, 13, 19})
	v.SetDefault("keypad.cols", []int{12, 16, 20, 21})
	v.SetDefault("keypad.console", false)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "thermal-regulator")
	v.SetDefault("mqtt.topic", "thermal/regulator")
	v.SetDefault("mqtt.connect_timeout", 5*time.Second)

	v.SetDefault("sim.ambient_c", 22.0)
	v.SetDefault("sim.heat_rate", 2.0)
	v.SetDefault("sim.cool_rate", 0.05)
}

// Load reads the named config file. An empty path searches ./configs for config.yml; a missing
// file there is not an error and leaves defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"loop.control": c.Loop.Control,
		"loop.status":  c.Loop.Status,
		"loop.remote":  c.Loop.Remote,
		"loop.poll":    c.Loop.Poll,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	switch c.Sensor.Driver {
	case DriverSim, DriverOneWire:
	default:
		errs = append(errs, fmt.Errorf("sensor.driver: unknown driver %q", c.Sensor.Driver))
	}
	switch c.Actuator.Driver {
	case DriverSim, DriverGPIO:
	default:
		errs = append(errs, fmt.Errorf("actuator.driver: unknown driver %q", c.Actuator.Driver))
	}
	switch c.Keypad.Driver {
	case DriverNone:
	case DriverMatrix:
		if len(c.Keypad.Rows) != 4 || len(c.Keypad.Cols) != 4 {
			errs = append(errs, errors.New("keypad: matrix needs 4 row and 4 column lines"))
		}
	default:
		errs = append(errs, fmt.Errorf("keypad.driver: unknown driver %q", c.Keypad.Driver))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	return errors.Join(errs...)
}
