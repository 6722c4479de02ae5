package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress        string `env:"RUN_ADDRESS"`
	StoreDSN          string `env:"STORE_DSN"`
	StoreBaseURL      string `env:"STORE_BASE_URL"`
	JWTAdminSecret    string `env:"JWT_ADMIN_SECRET"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	MonthlyRate       string `env:"MONTHLY_INTEREST_RATE"`
	AnnualRate        string `env:"ANNUAL_INTEREST_RATE"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.StoreDSN == "" && conf.StoreBaseURL == "" {
		return nil, errors.New("either store DSN or store base URL must be set")
	}
	if conf.JWTAdminSecret == "" {
		return nil, errors.New("admin JWT secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.StoreDSN, "d", "", "Object store sqlite DSN (file path or :memory:)")
	flag.StringVar(&flagConfig.StoreBaseURL, "s", "", "Remote object store base URL")
	flag.StringVar(&flagConfig.JWTAdminSecret, "j", "", "Admin JWT secret key")
	flag.StringVar(&flagConfig.AdminPasswordHash, "p", "", "Admin password bcrypt hash")
	flag.StringVar(&flagConfig.MonthlyRate, "monthly-rate", "", "Default monthly interest rate, percent")
	flag.StringVar(&flagConfig.AnnualRate, "annual-rate", "", "Default annual interest rate, percent")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:        defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		StoreDSN:          defaultIfBlank(envConfig.StoreDSN, flagsConfig.StoreDSN),
		StoreBaseURL:      defaultIfBlank(envConfig.StoreBaseURL, flagsConfig.StoreBaseURL),
		JWTAdminSecret:    defaultIfBlank(envConfig.JWTAdminSecret, flagsConfig.JWTAdminSecret),
		AdminPasswordHash: defaultIfBlank(envConfig.AdminPasswordHash, flagsConfig.AdminPasswordHash),
		MonthlyRate:       defaultIfBlank(envConfig.MonthlyRate, flagsConfig.MonthlyRate),
		AnnualRate:        defaultIfBlank(envConfig.AnnualRate, flagsConfig.AnnualRate),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
