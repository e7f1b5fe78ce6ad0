package main

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	configMutex   sync.RWMutex
	currentConfig *SimConfig
)

// ServerConfig points the simulator at a running navigation server
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RideConfig controls the simulated ride
type RideConfig struct {
	RouteID          string  `mapstructure:"route_id"`
	SpeedMps         float64 `mapstructure:"speed_mps"`
	FrequencySeconds float64 `mapstructure:"frequency_seconds"`
	// WanderMeters pushes the rider this far off the route mid-ride, to
	// exercise off-route detection. Zero keeps the rider on the line.
	WanderMeters float64 `mapstructure:"wander_meters"`
}

// SimConfig holds entire config
type SimConfig struct {
	Server ServerConfig `mapstructure:"server"`
	Ride   RideConfig   `mapstructure:"ride"`
}

// LoadConfig initializes and loads the configuration, reloading it when the
// file changes on disk
func LoadConfig(path string) (*SimConfig, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("yaml")

	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("ride.speed_mps", 6.0)
	viper.SetDefault("ride.frequency_seconds", 1.0)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg SimConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	configMutex.Lock()
	currentConfig = &cfg
	configMutex.Unlock()

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		var newCfg SimConfig
		if err := viper.Unmarshal(&newCfg); err == nil {
			configMutex.Lock()
			currentConfig = &newCfg
			configMutex.Unlock()
		}
	})

	return &cfg, nil
}

// GetConfig returns the most recently loaded configuration
func GetConfig() *SimConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return currentConfig
}
