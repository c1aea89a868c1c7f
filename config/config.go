package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Room codes are always five letters; an impostor game needs at least four
// players. Deployments may raise the player minimum but not lower it.
const (
	RoomCodeLength     = 5
	MinImpostorPlayers = 4
)

// Archive drivers.
const (
	DriverMemory   = "memory"
	DriverGorm     = "gorm"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress   string        `mapstructure:"http_address"`
	RPCAddress    string        `mapstructure:"rpc_address"`
	HealthAddress string        `mapstructure:"health_address"`
	Heartbeat     time.Duration `mapstructure:"heartbeat"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type MonitorConfig struct {
	Address        string        `mapstructure:"address"`
	Namespace      string        `mapstructure:"namespace"`
	SampleInterval time.Duration `mapstructure:"sample_interval"`
}

type GameConfig struct {
	CodeLength         int `mapstructure:"code_length"`
	ImpostorMinPlayers int `mapstructure:"impostor_min_players"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// DSN returns the key/value connection string understood by lib/pq and pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.DBName)
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var errs []error
	if c.Server.HTTPAddress == "" {
		errs = append(errs, errors.New("server.http_address must be set"))
	}
	if c.Game.CodeLength != RoomCodeLength {
		errs = append(errs, fmt.Errorf("game.code_length must be %d, got %d", RoomCodeLength, c.Game.CodeLength))
	}
	if c.Game.ImpostorMinPlayers < MinImpostorPlayers {
		errs = append(errs, fmt.Errorf("game.impostor_min_players must be at least %d, got %d", MinImpostorPlayers, c.Game.ImpostorMinPlayers))
	}
	if c.Monitor.SampleInterval <= 0 {
		errs = append(errs, errors.New("monitor.sample_interval must be positive"))
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverGorm, DriverPostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			errs = append(errs, errors.New("database.postgres host and dbname are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// LoadConfig reads config.yaml from path if present, applies PARTY_*
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":9090")
	v.SetDefault("server.health_address", ":9091")
	v.SetDefault("server.heartbeat", "30s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("monitor.address", ":2112")
	v.SetDefault("monitor.namespace", "partyserver")
	v.SetDefault("monitor.sample_interval", "5s")

	v.SetDefault("game.code_length", RoomCodeLength)
	v.SetDefault("game.impostor_min_players", MinImpostorPlayers)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "party")
	v.SetDefault("database.postgres.password", "party")
	v.SetDefault("database.postgres.dbname", "party")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}
