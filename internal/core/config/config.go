package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	Organizer   HTTP
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Enable      bool   `mapstructure:"enable"`
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	EventTTLSec int    `mapstructure:"eventTTLSec"`
}

// DB Driver 支持 postgres / mysql / memory（memory 仅用于本地演示）
type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	SeedCategories     bool
	SeedSampleEvents   bool
	LogLevel           string
}

// Booking 出票相关参数
type Booking struct {
	MaxQuantity      int      `mapstructure:"maxQuantity"`
	QRAttempts       int      `mapstructure:"qrAttempts"`
	DeclinedLastFour []string `mapstructure:"declinedLastFour"`
}

// Limits HTTP 保护：限流 / 并发 / 请求体 / 超时；0 表示关闭对应中间件
type Limits struct {
	GlobalRatePerSec float64 `mapstructure:"globalRatePerSec"`
	GlobalBurst      int     `mapstructure:"globalBurst"`
	RatePerSec       float64 `mapstructure:"ratePerSec"`
	Burst            int     `mapstructure:"burst"`
	MaxConcurrent    int64   `mapstructure:"maxConcurrent"`
	QueueWaitMs      int     `mapstructure:"queueWaitMs"`
	MaxBodyBytes     int64   `mapstructure:"maxBodyBytes"`
	TimeoutSec       int     `mapstructure:"timeoutSec"`
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis   `mapstructure:"redis"`
	Booking Booking `mapstructure:"booking"`
	Limits  Limits  `mapstructure:"limits"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "eventlink")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.organizer.host", "0.0.0.0")
	v.SetDefault("app.organizer.port", 8081)
	v.SetDefault("app.organizer.readTimeoutSec", 5)
	v.SetDefault("app.organizer.writeTimeoutSec", 10)
	v.SetDefault("app.organizer.idleTimeoutSec", 60)
	v.SetDefault("app.corsOrigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/eventlink.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "eventlink")
	v.SetDefault("jwt.accessTokenTTLMin", 120)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.seedCategories", true)
	v.SetDefault("db.seedSampleEvents", false)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.eventTTLSec", 60)

	v.SetDefault("booking.maxQuantity", 10)
	v.SetDefault("booking.qrAttempts", 5)
	v.SetDefault("booking.declinedLastFour", []string{"0000"})

	v.SetDefault("limits.globalRatePerSec", 500)
	v.SetDefault("limits.globalBurst", 1000)
	v.SetDefault("limits.ratePerSec", 20)
	v.SetDefault("limits.burst", 40)
	v.SetDefault("limits.maxConcurrent", 256)
	v.SetDefault("limits.queueWaitMs", 200)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
}

var ErrInvalid = errors.New("invalid config")

// Load 默认值 < yaml < APP_ 前缀环境变量（如 APP_DB_DRIVER）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = "./configs/config.local.yaml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("%w: jwt.secret is required", ErrInvalid))
	}
	switch c.DB.Driver {
	case "memory", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("%w: db.driver %q", ErrInvalid, c.DB.Driver))
	}
	if c.DB.Driver != "memory" && c.DB.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: db.dsn is required for %s", ErrInvalid, c.DB.Driver))
	}
	if c.Booking.MaxQuantity < 1 {
		errs = append(errs, fmt.Errorf("%w: booking.maxQuantity must be >= 1", ErrInvalid))
	}
	return errors.Join(errs...)
}
