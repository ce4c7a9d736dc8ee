package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DashboardConfig bounds the chart windows served by the dashboard.
type DashboardConfig struct {
	DefaultDays   int `mapstructure:"defaultDays"`
	DefaultMonths int `mapstructure:"defaultMonths"`
	MaxDays       int `mapstructure:"maxDays"`
	MaxMonths     int `mapstructure:"maxMonths"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		DefaultDays:   7,
		DefaultMonths: 6,
		MaxDays:       90,
		MaxMonths:     24,
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder that never reloads.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(log *zap.Logger) (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/telcox")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TELCOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.defaultDays", defaults.DefaultDays)
	v.SetDefault("dashboard.defaultMonths", defaults.DefaultMonths)
	v.SetDefault("dashboard.maxDays", defaults.MaxDays)
	v.SetDefault("dashboard.maxMonths", defaults.MaxMonths)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	log = log.Named("config.dashboard")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	return h.current.Load().(DashboardConfig)
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.DefaultDays <= 0 || cfg.DefaultMonths <= 0 {
		return errors.New("dashboard defaults must be positive")
	}
	if cfg.MaxDays < cfg.DefaultDays {
		return errors.New("dashboard.maxDays cannot be lower than dashboard.defaultDays")
	}
	if cfg.MaxMonths < cfg.DefaultMonths {
		return errors.New("dashboard.maxMonths cannot be lower than dashboard.defaultMonths")
	}
	return nil
}
