// Package config loads service settings from configs/config.yml and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "VACUUM"

// Config is the full set of runtime settings.
type Config struct {
	Port       string           `mapstructure:"port"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Alarm      AlarmConfig      `mapstructure:"alarm"`
	Xiaomi     XiaomiConfig     `mapstructure:"xiaomi"`
	Fleet      FleetConfig      `mapstructure:"fleet"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// AlarmConfig holds the alarm vendor credentials and polling cadence.
type AlarmConfig struct {
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Installation string        `mapstructure:"installation"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// XiaomiConfig holds the cloud discovery credentials.
type XiaomiConfig struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ModelFilter string `mapstructure:"model_filter"`
}

type FleetConfig struct {
	Cooldown time.Duration `mapstructure:"cooldown"`
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MaxPolls int           `mapstructure:"max_polls"`
}

// AuthConfig describes the single API operator. An empty PasswordHash
// disables API authentication.
type AuthConfig struct {
	Username     string        `mapstructure:"username"`
	PasswordHash string        `mapstructure:"password_hash"`
	SigningKey   string        `mapstructure:"signing_key"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type ProbeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Count   int           `mapstructure:"count"`
}

// SimulationConfig drives the in-process vendor simulator.
type SimulationConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	Tick             time.Duration     `mapstructure:"tick"`
	SessionTTL       time.Duration     `mapstructure:"session_ttl"`
	CleaningDuration time.Duration     `mapstructure:"cleaning_duration"`
	InitialAlarm     string            `mapstructure:"initial_alarm"`
	Devices          []SimulatedVacuum `mapstructure:"devices"`
}

type SimulatedVacuum struct {
	ID      string `mapstructure:"id"`
	Model   string `mapstructure:"model"`
	LocalIP string `mapstructure:"local_ip"`
	Token   string `mapstructure:"token"`
}

var errInvalidConfig = errors.New("invalid config")

// Load reads the named config file from the given search paths. A missing
// file is not an error: defaults and environment still apply.
func Load(name string, paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(name)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5001")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", ":memory:")
	v.SetDefault("alarm.poll_interval", 90*time.Second)
	v.SetDefault("xiaomi.model_filter", "roborock.vacuum")
	v.SetDefault("fleet.cooldown", 48*time.Hour)
	v.SetDefault("monitor.interval", 10*time.Second)
	v.SetDefault("monitor.max_polls", 360)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("ratelimit.rps", 2.0)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("probe.timeout", time.Second)
	v.SetDefault("probe.count", 1)
	v.SetDefault("simulation.enabled", true)
	v.SetDefault("simulation.tick", time.Second)
	v.SetDefault("simulation.session_ttl", 30*time.Minute)
	v.SetDefault("simulation.cleaning_duration", 20*time.Minute)
	v.SetDefault("simulation.initial_alarm", "DISARMED")
}

func (c Config) validate() error {
	switch {
	case c.Alarm.PollInterval <= 0:
		return fmt.Errorf("%w: alarm.poll_interval must be positive", errInvalidConfig)
	case c.Monitor.Interval <= 0:
		return fmt.Errorf("%w: monitor.interval must be positive", errInvalidConfig)
	case c.Monitor.MaxPolls <= 0:
		return fmt.Errorf("%w: monitor.max_polls must be positive", errInvalidConfig)
	case c.Fleet.Cooldown < 0:
		return fmt.Errorf("%w: fleet.cooldown must not be negative", errInvalidConfig)
	case c.Auth.PasswordHash != "" && c.Auth.SigningKey == "":
		return fmt.Errorf("%w: auth.signing_key is required when auth.password_hash is set", errInvalidConfig)
	case c.Simulation.Enabled && c.Simulation.Tick <= 0:
		return fmt.Errorf("%w: simulation.tick must be positive", errInvalidConfig)
	case c.Simulation.Enabled && c.Simulation.SessionTTL <= 0:
		return fmt.Errorf("%w: simulation.session_ttl must be positive", errInvalidConfig)
	case c.Simulation.Enabled && c.Simulation.CleaningDuration < 0:
		return fmt.Errorf("%w: simulation.cleaning_duration must not be negative", errInvalidConfig)
	}
	return nil
}
