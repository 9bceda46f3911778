package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Manager struct {
	Name     string
	Section  string
	Initials string
}

type Config struct {
	HTTPAddr         string
	StoreDriver      string
	DBPath           string
	MongoURI         string
	MongoDBName      string
	NotifyWebhookURL string
	ReminderLead     time.Duration
	LogFile          string
	LogLevel         string
	Manager          Manager
	Location         *time.Location
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "./optines.db")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "optines")
	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("REMINDER_LEAD", "15m")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MANAGER_NAME", "")
	v.SetDefault("MANAGER_SECTION", "")
	v.SetDefault("MANAGER_INITIALS", "")
	v.SetDefault("TIMEZONE", "Local")
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		StoreDriver:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DBPath:           v.GetString("DB_PATH"),
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDBName:      v.GetString("MONGO_DB_NAME"),
		NotifyWebhookURL: v.GetString("NOTIFY_WEBHOOK_URL"),
		LogFile:          v.GetString("LOG_FILE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		Manager: Manager{
			Name:     v.GetString("MANAGER_NAME"),
			Section:  v.GetString("MANAGER_SECTION"),
			Initials: v.GetString("MANAGER_INITIALS"),
		},
	}

	lead, err := time.ParseDuration(v.GetString("REMINDER_LEAD"))
	if err != nil {
		return nil, fmt.Errorf("REMINDER_LEAD: %w", err)
	}
	if lead < 0 {
		return nil, fmt.Errorf("REMINDER_LEAD must not be negative, got %s", lead)
	}
	cfg.ReminderLead = lead

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DBPath == "" {
			return nil, errors.New("DB_PATH is required for the sqlite store")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGO_URI is required for the mongo store")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}
