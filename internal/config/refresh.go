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

// RefreshConfig tunes the refresh pipeline: upstream endpoints, fetch
// timeout, upsert batch size and how many records the summary ranks.
type RefreshConfig struct {
	CountriesURL string        `mapstructure:"countriesUrl"`
	RatesURL     string        `mapstructure:"ratesUrl"`
	FetchTimeout time.Duration `mapstructure:"fetchTimeout"`
	BatchSize    int           `mapstructure:"batchSize"`
	TopN         int           `mapstructure:"topN"`
}

func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		CountriesURL: "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies",
		RatesURL:     "https://open.er-api.com/v6/latest/USD",
		FetchTimeout: 15 * time.Second,
		BatchSize:    50,
		TopN:         5,
	}
}

// RefreshConfigHolder hot-reloads refresh tuning from an optional
// config file; defaults apply when none is present.
type RefreshConfigHolder struct {
	current atomic.Value // holds RefreshConfig
}

func NewRefreshConfigHolder() (*RefreshConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("refresh")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/countryatlas")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COUNTRYATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	defaults := DefaultRefreshConfig()
	v.SetDefault("refresh.countriesUrl", defaults.CountriesURL)
	v.SetDefault("refresh.ratesUrl", defaults.RatesURL)
	v.SetDefault("refresh.fetchTimeout", defaults.FetchTimeout)
	v.SetDefault("refresh.batchSize", defaults.BatchSize)
	v.SetDefault("refresh.topN", defaults.TopN)

	var cfg RefreshConfig
	if err := v.UnmarshalKey("refresh", &cfg); err != nil {
		return nil, err
	}
	if err := validateRefreshConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RefreshConfigHolder{}
	holder.current.Store(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated RefreshConfig
			if err := v.UnmarshalKey("refresh", &updated); err != nil {
				log.Printf("[refresh-config] reload failed: %v", err)
				return
			}
			if err := validateRefreshConfig(updated); err != nil {
				log.Printf("[refresh-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[refresh-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// NewStaticRefreshConfigHolder wraps a fixed config, mainly for tests.
func NewStaticRefreshConfigHolder(cfg RefreshConfig) *RefreshConfigHolder {
	holder := &RefreshConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RefreshConfigHolder) Get() RefreshConfig {
	return h.current.Load().(RefreshConfig)
}

func validateRefreshConfig(cfg RefreshConfig) error {
	if strings.TrimSpace(cfg.CountriesURL) == "" {
		return errors.New("refresh.countriesUrl cannot be empty")
	}
	if strings.TrimSpace(cfg.RatesURL) == "" {
		return errors.New("refresh.ratesUrl cannot be empty")
	}
	if cfg.FetchTimeout < 10*time.Second || cfg.FetchTimeout > 30*time.Second {
		return errors.New("refresh.fetchTimeout must be between 10s and 30s")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("refresh.batchSize must be positive")
	}
	if cfg.TopN <= 0 {
		return errors.New("refresh.topN must be positive")
	}
	return nil
}
