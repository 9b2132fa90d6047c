// Package config loads engine configuration from a YAML file overridable by
// environment variables, following the teacher's viper/godotenv/yaml.v3
// convention (cmd/cli/blockchain_synchronization.go initSyncConfig).
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the engine and its CLI/HTTP surface read.
type Config struct {
	StoreDir     string `yaml:"store_dir"`
	ListenAddr   string `yaml:"listen_addr"`
	RateLimitRPS int     `yaml:"rate_limit_rps"`
	RateLimitBurst int   `yaml:"rate_limit_burst"`
}

func defaults() Config {
	return Config{
		StoreDir:       "./data",
		ListenAddr:     "127.0.0.1:8960",
		RateLimitRPS:   200,
		RateLimitBurst: 100,
	}
}

// Load reads path (if it exists) as YAML into Config, then lets
// TXENGINE_-prefixed environment variables (loaded from a .env file, if
// present, via godotenv) override individual fields through viper —
// mirroring initSyncConfig's SetEnvPrefix/AutomaticEnv pattern.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	viper.SetEnvPrefix("txengine")
	viper.AutomaticEnv()
	if v := viper.GetString("store_dir"); v != "" {
		cfg.StoreDir = v
	}
	if v := viper.GetString("listen_addr"); v != "" {
		cfg.ListenAddr = v
	}
	if v := viper.GetInt("rate_limit_rps"); v != 0 {
		cfg.RateLimitRPS = v
	}
	if v := viper.GetInt("rate_limit_burst"); v != 0 {
		cfg.RateLimitBurst = v
	}
	return cfg, nil
}
