package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/store"
)

const (
	configFileName = "formkit"
	configFileType = "yaml"
	envPrefix      = "FORMKIT"

	cfgKeyStoreDriver = "store.driver"
	cfgKeyStorePath   = "store.path"
	cfgKeyOptionName  = "option_name"
	cfgKeyEnabled     = "enabled"
	cfgKeyMenu        = "menu"
	cfgKeyLogLevel    = "log_level"

	defaultDataDir = ".formkit"
)

// Config is the resolved CLI configuration.
type Config struct {
	StoreDriver string
	StorePath   string
	OptionName  string
	Enabled     bool
	Menu        string
	LogLevel    string
}

// loadConfig reads formkit.yaml (or the file at path), FORMKIT_* environment
// variables and bound flags, in increasing order of precedence. A missing
// default config file is not an error.
func loadConfig(path string, bind func(*viper.Viper) error) (Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyStoreDriver, store.DriverFile)
	v.SetDefault(cfgKeyOptionName, registry.DefaultOptionName)
	v.SetDefault(cfgKeyEnabled, true)
	v.SetDefault(cfgKeyMenu, "")
	v.SetDefault(cfgKeyLogLevel, "warn")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if bind != nil {
		if err := bind(v); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		StoreDriver: strings.ToLower(strings.TrimSpace(v.GetString(cfgKeyStoreDriver))),
		StorePath:   strings.TrimSpace(v.GetString(cfgKeyStorePath)),
		OptionName:  strings.TrimSpace(v.GetString(cfgKeyOptionName)),
		Enabled:     v.GetBool(cfgKeyEnabled),
		Menu:        strings.TrimSpace(v.GetString(cfgKeyMenu)),
		LogLevel:    v.GetString(cfgKeyLogLevel),
	}
	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath(cfg.StoreDriver)
	}
	return cfg, nil
}

func defaultStorePath(driver string) string {
	if driver == store.DriverSQLite {
		return filepath.Join(defaultDataDir, "options.db")
	}
	return filepath.Join(defaultDataDir, "options.json")
}
