package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Token signing defaults, shared with the middleware until Configure runs.
const (
	DefaultJWTSecret = "your_jwt_secret_key_change_in_production"
	DefaultTokenTTL  = 24 * time.Hour
)

// Settings is the root configuration, read from .env, the environment and defaults.
type Settings struct {
	Server   ServerSettings   `mapstructure:"server"`
	Database DatabaseSettings `mapstructure:"database"`
	JWT      JWTSettings      `mapstructure:"jwt"`
	Log      LogSettings      `mapstructure:"log"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Weather  WeatherSettings  `mapstructure:"weather"`
	Bridges  BridgeSettings   `mapstructure:"bridges"`
	Realtime RealtimeSettings `mapstructure:"realtime"`
}

type ServerSettings struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseSettings struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogSettings struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// RedisSettings configures the cross-instance event relay. An empty Addr disables it.
type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WeatherSettings struct {
	AlertsURL string        `mapstructure:"alerts_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type BridgeSettings struct {
	DataPath string `mapstructure:"data_path"`
}

type RealtimeSettings struct {
	MaxClients int `mapstructure:"max_clients"`
	QueueSize  int `mapstructure:"queue_size"`
}

// envBindings keeps the variable names the deployment scripts already use.
var envBindings = map[string]string{
	"server.port":          "PORT",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.name":        "DB_NAME",
	"database.sslmode":     "DB_SSLMODE",
	"database.timezone":    "DB_TIMEZONE",
	"jwt.secret":           "JWT_SECRET",
	"log.file":             "LOG_FILE",
	"log.level":            "LOG_LEVEL",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"weather.alerts_url":   "WEATHER_ALERTS_URL",
	"bridges.data_path":    "BRIDGES_DATA_PATH",
	"realtime.max_clients": "REALTIME_MAX_CLIENTS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "road_treatment_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.ttl", DefaultTokenTTL)

	v.SetDefault("log.file", "./logs/app.log")
	v.SetDefault("log.level", "info")

	v.SetDefault("weather.alerts_url", "https://api.weather.gov/alerts/active?area=AL")
	v.SetDefault("weather.user_agent", "(roadtreatmentmvp.com, contact@roadtreatmentmvp.com)")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("bridges.data_path", "./data/AL23.txt")

	v.SetDefault("realtime.max_clients", 256)
	v.SetDefault("realtime.queue_size", 64)
}

// Load reads settings. A missing .env file is not an error.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
