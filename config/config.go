package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix — префикс переменных окружения (FLEETDASH_DATABASE_DSN и т.д.).
const EnvPrefix = "FLEETDASH"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

// DatabaseConfig — driver: "postgres" | "mysql" | "sqlite" | "" (без БД).
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DashboardConfig — настройки view-слоя.
type DashboardConfig struct {
	// APIBaseURL пустой — view-контроллеры ходят в хранилище напрямую,
	// иначе через HTTP-клиент на указанный адрес.
	APIBaseURL string        `mapstructure:"api_base_url"`
	ToastTTL   time.Duration `mapstructure:"toast_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "fleetdash.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("dashboard.api_base_url", "")
	v.SetDefault("dashboard.toast_ttl", 3*time.Second)
}

// Flags — набор флагов командной строки, которые перекрывают файл и env.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fleetdash", pflag.ContinueOnError)
	fs.String("config", "", "path to config file (yaml)")
	fs.String("server.http_port", "", "HTTP port")
	fs.String("database.driver", "", "database driver: postgres | mysql | sqlite")
	fs.String("database.dsn", "", "database DSN")
	fs.String("logging.level", "", "log level")
	fs.Bool("seed", false, "insert demo devices and models and exit")
	return fs
}

// Load собирает конфиг: defaults <- .env <- файл <- env <- флаги.
func Load(fs *pflag.FlagSet) (*Config, *viper.Viper, error) {
	// .env необязателен
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := ""
	if fs != nil {
		path, _ = fs.GetString("config")
		// пустые флаги не должны затирать файл/env
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed && f.Name != "config" && f.Name != "seed" {
				_ = v.BindPFlag(f.Name, f)
			}
		})
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

// Watch вызывает onChange с перечитанным конфигом при изменении файла.
// Без файла конфигурации ничего не делает.
func Watch(v *viper.Viper, onChange func(*Config)) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
