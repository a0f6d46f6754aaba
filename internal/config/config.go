package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir          string
	LogLevel         string
	SaveDebounce     time.Duration
	AutosaveDebounce time.Duration
	NotifyDayBefore  bool
	NotifyHourBefore bool
	HapticsEnabled   bool
	ProUnlocked      bool
	ProPrice         string
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("save.debounce", "150ms")
	v.SetDefault("save.autosave_debounce", "700ms")
	v.SetDefault("notify.day_before", false)
	v.SetDefault("notify.hour_before", false)
	v.SetDefault("haptics.enabled", true)
	v.SetDefault("pro.unlocked", false)
	v.SetDefault("pro.price", "4,99 €")

	_ = v.BindEnv("data.dir", "NOTAT_DATA_DIR")
	_ = v.BindEnv("log.level", "NOTAT_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("save.debounce", "NOTAT_SAVE_DEBOUNCE")
	_ = v.BindEnv("save.autosave_debounce", "NOTAT_SAVE_AUTOSAVE_DEBOUNCE")
	_ = v.BindEnv("notify.day_before", "NOTAT_NOTIFY_DAY_BEFORE")
	_ = v.BindEnv("notify.hour_before", "NOTAT_NOTIFY_HOUR_BEFORE")
	_ = v.BindEnv("haptics.enabled", "NOTAT_HAPTICS_ENABLED")
	_ = v.BindEnv("pro.unlocked", "NOTAT_PRO_UNLOCKED")
	_ = v.BindEnv("pro.price", "NOTAT_PRO_PRICE")

	saveDebounce, err := time.ParseDuration(v.GetString("save.debounce"))
	if err != nil {
		return Config{}, err
	}
	autosaveDebounce, err := time.ParseDuration(v.GetString("save.autosave_debounce"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		DataDir:          strings.TrimSpace(v.GetString("data.dir")),
		LogLevel:         v.GetString("log.level"),
		SaveDebounce:     saveDebounce,
		AutosaveDebounce: autosaveDebounce,
		NotifyDayBefore:  v.GetBool("notify.day_before"),
		NotifyHourBefore: v.GetBool("notify.hour_before"),
		HapticsEnabled:   v.GetBool("haptics.enabled"),
		ProUnlocked:      v.GetBool("pro.unlocked"),
		ProPrice:         v.GetString("pro.price"),
	}, nil
}
