package config

// Config represents the complete navigation server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Routing  RoutingConfig  `yaml:"routing"`
	Planner  PlannerConfig  `yaml:"planner"`
	Nav      NavConfig      `yaml:"nav"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CorsOrigins []string `yaml:"cors_origins"`
}

// RoutingConfig holds routing service settings
type RoutingConfig struct {
	BaseURL string `yaml:"base_url"`
	Profile string `yaml:"profile"`
}

// PlannerConfig holds route planning settings
type PlannerConfig struct {
	SnapThresholdMeters float64 `yaml:"snap_threshold_meters"`
	HistoryLimit        int     `yaml:"history_limit"`
}

// NavConfig holds active navigation settings
type NavConfig struct {
	OffRouteThresholdMeters float64 `yaml:"off_route_threshold_meters"`
	SpeedWindowSize         int     `yaml:"speed_window_size"`
	MinMovingSpeedMps       float64 `yaml:"min_moving_speed_mps"`
}

// DatabaseConfig holds the route store settings. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CorsOrigins: []string{"*"},
		},
		Routing: RoutingConfig{
			BaseURL: "https://router.project-osrm.org",
			Profile: "cycling",
		},
		Planner: PlannerConfig{
			SnapThresholdMeters: 50,
			HistoryLimit:        50,
		},
		Nav: NavConfig{
			OffRouteThresholdMeters: 50,
			SpeedWindowSize:         5,
			MinMovingSpeedMps:       0.5,
		},
	}
}
