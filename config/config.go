// Package config loads application settings from an optional YAML file and
// BOQ_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application settings as read by Load.
type Config struct {
	Company struct {
		Name    string
		Address string
		TRN     string `mapstructure:"trn"`
	} `mapstructure:"company"`

	Currency struct {
		Code string
	} `mapstructure:"currency"`

	VAT struct {
		DefaultPercent float64 `mapstructure:"default_percent"`
	} `mapstructure:"vat"`

	Documents struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
		APIKey  string        `mapstructure:"api_key"`
	} `mapstructure:"documents"`

	Procurement struct {
		Name  string
		Email string
		Phone string
	} `mapstructure:"procurement"`

	LPO struct {
		NumberPrefix string `mapstructure:"number_prefix"`
	} `mapstructure:"lpo"`
}

var defaults = map[string]any{
	"company.name":        "Company",
	"company.address":     "",
	"company.trn":         "",
	"currency.code":       "AED",
	"vat.default_percent": 5.0,
	"documents.base_url":  "",
	"documents.timeout":   "30s",
	"documents.api_key":   "",
	"procurement.name":    "",
	"procurement.email":   "",
	"procurement.phone":   "",
	"lpo.number_prefix":   "LPO",
}

// Load reads the YAML file at path, if one is given, and applies environment
// overrides such as BOQ_DOCUMENTS_BASE_URL.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("BOQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
