package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fireplus_bridge/internal/fireplus"

	"github.com/spf13/viper"
)

// Config is the bridge configuration, read from config.yml and FIREPLUS_* env vars.
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Poll    PollConfig    `mapstructure:"poll"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type DeviceConfig struct {
	Host        string        `mapstructure:"host"`
	IPFamily    string        `mapstructure:"ip_family"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"` // wait before re-polling after a write
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         byte   `mapstructure:"qos"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const envPrefix = "FIREPLUS"

const minPollInterval = time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.host", "fire")
	v.SetDefault("device.ip_family", string(fireplus.IPAny))
	v.SetDefault("device.timeout", fireplus.DefaultTimeout)
	v.SetDefault("device.settle_delay", time.Second)
	v.SetDefault("poll.interval", 30*time.Second)
	v.SetDefault("http.port", "8080")
	v.SetDefault("db.path", "fireplus.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "fireplus-bridge")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "fireplus")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("metrics.enabled", true)
}

// Load reads config.yml from dir (a missing file is not an error), applies
// environment overrides and validates the result.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
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

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.Host) == "" {
		return errors.New("device.host must not be empty")
	}
	if _, err := fireplus.ParseIPFamily(c.Device.IPFamily); err != nil {
		return fmt.Errorf("device.ip_family: %w", err)
	}
	if c.Device.Timeout <= 0 {
		return errors.New("device.timeout must be positive")
	}
	if c.Device.SettleDelay < 0 {
		return errors.New("device.settle_delay must not be negative")
	}
	if c.Poll.Interval < minPollInterval {
		return fmt.Errorf("poll.interval must be at least %s", minPollInterval)
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("mqtt.broker must be set when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return errors.New("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}
