package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LevelCount is the fixed depth of both upline cascades.
const LevelCount = 10

// DistributionSettings is the snapshot the payout engine reads once per
// cascade. Percentages are 0-100.
type DistributionSettings struct {
	WorkDeductionPercent   float64   `mapstructure:"workDeductionPercent"`
	DownlineSupportPercent float64   `mapstructure:"downlineSupportPercent"`
	MagicFundPercent       float64   `mapstructure:"magicFundPercent"`
	MagicTaxPercent        float64   `mapstructure:"magicTaxPercent"`
	LevelDistributionRates []float64 `mapstructure:"levelDistributionRates"`

	WithdrawalsEnabled bool `mapstructure:"withdrawalsEnabled"`
	InvestmentEnabled  bool `mapstructure:"investmentEnabled"`
	GalleryEnabled     bool `mapstructure:"galleryEnabled"`
}

func DefaultDistributionSettings() DistributionSettings {
	return DistributionSettings{
		WorkDeductionPercent:   15,
		DownlineSupportPercent: 100,
		MagicFundPercent:       5,
		MagicTaxPercent:        20,
		LevelDistributionRates: []float64{25, 15, 10, 10, 10, 10, 5, 5, 5, 5},
		WithdrawalsEnabled:     true,
		InvestmentEnabled:      true,
		GalleryEnabled:         true,
	}
}

// DistributionHolder keeps the current settings snapshot. Get returns a
// value copy, so a cascade that read a snapshot keeps it for its whole
// duration regardless of concurrent reloads.
type DistributionHolder struct {
	current atomic.Value // holds DistributionSettings
}

func NewDistributionHolder() (*DistributionHolder, error) {
	v := viper.New()

	v.SetConfigName("distribution")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/atelier/config")
	v.AddConfigPath("/etc/atelier")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDistributionSettings()
	v.SetDefault("distribution.workDeductionPercent", defaults.WorkDeductionPercent)
	v.SetDefault("distribution.downlineSupportPercent", defaults.DownlineSupportPercent)
	v.SetDefault("distribution.magicFundPercent", defaults.MagicFundPercent)
	v.SetDefault("distribution.magicTaxPercent", defaults.MagicTaxPercent)
	v.SetDefault("distribution.levelDistributionRates", defaults.LevelDistributionRates)
	v.SetDefault("distribution.withdrawalsEnabled", defaults.WithdrawalsEnabled)
	v.SetDefault("distribution.investmentEnabled", defaults.InvestmentEnabled)
	v.SetDefault("distribution.galleryEnabled", defaults.GalleryEnabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var settings DistributionSettings
	if err := v.UnmarshalKey("distribution", &settings); err != nil {
		return nil, err
	}
	if err := ValidateDistributionSettings(settings); err != nil {
		return nil, err
	}

	holder := &DistributionHolder{}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DistributionSettings
		if err := v.UnmarshalKey("distribution", &updated); err != nil {
			log.Printf("[distribution-config] reload failed: %v", err)
			return
		}
		if err := ValidateDistributionSettings(updated); err != nil {
			log.Printf("[distribution-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[distribution-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DistributionHolder) Get() DistributionSettings {
	return h.current.Load().(DistributionSettings)
}

// Store replaces the current snapshot. Used by tests and administrative
// tooling; file reloads go through the watcher.
func (h *DistributionHolder) Store(settings DistributionSettings) error {
	if err := ValidateDistributionSettings(settings); err != nil {
		return err
	}
	h.current.Store(settings)
	return nil
}

// ValidateDistributionSettings bounds every percentage to [0,100] and
// requires exactly LevelCount level rates. The level rates are allowed to
// sum past 100 because operators use that as an intentional boost; it is
// only warned about.
func ValidateDistributionSettings(s DistributionSettings) error {
	if err := checkPercent("workDeductionPercent", s.WorkDeductionPercent); err != nil {
		return err
	}
	if err := checkPercent("downlineSupportPercent", s.DownlineSupportPercent); err != nil {
		return err
	}
	if err := checkPercent("magicFundPercent", s.MagicFundPercent); err != nil {
		return err
	}
	if err := checkPercent("magicTaxPercent", s.MagicTaxPercent); err != nil {
		return err
	}
	if len(s.LevelDistributionRates) != LevelCount {
		return fmt.Errorf("distribution.levelDistributionRates must have exactly %d entries, got %d", LevelCount, len(s.LevelDistributionRates))
	}
	sum := 0.0
	for i, rate := range s.LevelDistributionRates {
		if err := checkPercent(fmt.Sprintf("levelDistributionRates[%d]", i), rate); err != nil {
			return err
		}
		sum += rate
	}
	if sum > 100 {
		log.Printf("[distribution-config] level rates sum to %.2f%% (> 100%%)", sum)
	}
	return nil
}

func checkPercent(name string, value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("distribution.%s must be between 0 and 100, got %v", name, value)
	}
	return nil
}
