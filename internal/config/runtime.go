package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TransferConfig holds operator-tunable transfer settings. Unlike Config it
// can change at runtime through the watched transfer.yml file.
type TransferConfig struct {
	LookbackDays   int                `mapstructure:"lookbackDays"`
	OrderBatchSize int                `mapstructure:"orderBatchSize"`
	AutoTransfer   AutoTransferConfig `mapstructure:"autoTransfer"`
}

type AutoTransferConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		LookbackDays:   14,
		OrderBatchSize: 50,
		AutoTransfer: AutoTransferConfig{
			Enabled:  false,
			Interval: 15 * time.Minute,
		},
	}
}

type TransferConfigHolder struct {
	current atomic.Value // holds TransferConfig
}

func NewTransferConfigHolder() (*TransferConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("transfer")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/quotient/config") // Volume-mounted config
	v.AddConfigPath("/etc/quotient")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	// env hanya untuk path override (optional)
	v.SetEnvPrefix("QUOTIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultTransferConfig()
		v.SetDefault("transfer.lookbackDays", defaults.LookbackDays)
		v.SetDefault("transfer.orderBatchSize", defaults.OrderBatchSize)
		v.SetDefault("transfer.autoTransfer", defaults.AutoTransfer)
	}

	var cfg TransferConfig
	if err := v.UnmarshalKey("transfer", &cfg); err != nil {
		return nil, err
	}
	cfg = withTransferDefaults(cfg)
	if err := validateTransferConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TransferConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TransferConfig
		if err := v.UnmarshalKey("transfer", &updated); err != nil {
			log.Printf("[transfer-config] reload failed: %v", err)
			return
		}
		updated = withTransferDefaults(updated)
		if err := validateTransferConfig(updated); err != nil {
			log.Printf("[transfer-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[transfer-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *TransferConfigHolder) Get() TransferConfig {
	return h.current.Load().(TransferConfig)
}

// StaticTransferConfigHolder pins the holder to cfg without watching any
// file. Tests and one-shot tools use it.
func StaticTransferConfigHolder(cfg TransferConfig) *TransferConfigHolder {
	holder := &TransferConfigHolder{}
	holder.current.Store(withTransferDefaults(cfg))
	return holder
}

func withTransferDefaults(cfg TransferConfig) TransferConfig {
	defaults := DefaultTransferConfig()
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = defaults.LookbackDays
	}
	if cfg.OrderBatchSize == 0 {
		cfg.OrderBatchSize = defaults.OrderBatchSize
	}
	if cfg.AutoTransfer.Interval == 0 {
		cfg.AutoTransfer.Interval = defaults.AutoTransfer.Interval
	}
	return cfg
}

func validateTransferConfig(cfg TransferConfig) error {
	if cfg.LookbackDays < 1 {
		return errors.New("transfer.lookbackDays must be at least 1")
	}
	if cfg.OrderBatchSize < 1 {
		return errors.New("transfer.orderBatchSize must be at least 1")
	}
	if cfg.AutoTransfer.Interval < time.Minute {
		return errors.New("transfer.autoTransfer.interval must be at least 1m")
	}
	return nil
}
