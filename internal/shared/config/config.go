package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tinyplanet-server/internal/shared/utils"
	"tinyplanet-server/internal/surface"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Frontend   FrontendConfig
	Logging    LoggingConfig
	RateLimit  RateLimitConfig
	Planet     PlanetConfig
	Simulation SimulationConfig
	POI        POIConfig
	Stream     StreamConfig
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	// Key holds the latest snapshot; Channel receives every published one
	Key     string
	Channel string
}

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

type PlanetConfig struct {
	Surface  surface.Config
	TileSize float32
	// ConfigPath optionally points at a YAML file overriding Surface
	ConfigPath string
}

type SimulationConfig struct {
	TickHz         int
	CommandTimeout time.Duration
	MaxCableLength float32
	HandDamage     int
	LandingIndex   int
	StartingWood   int
	StartingStone  int
	StartingCopper int
	CatalogPath    string
}

type POIConfig struct {
	Frequency         float64
	TreeProbability   float64
	StoneProbability  float64
	CopperProbability float64
}

type StreamConfig struct {
	Enabled      bool
	PublishEvery int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() (*Config, error) {
	planet, err := loadPlanetConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server:     loadServerConfig(),
		Redis:      loadRedisConfig(),
		Frontend:   loadFrontendConfig(),
		Logging:    loadLoggingConfig(),
		RateLimit:  loadRateLimitConfig(),
		Planet:     planet,
		Simulation: loadSimulationConfig(),
		POI:        loadPOIConfig(),
		Stream:     loadStreamConfig(),
	}

	return config, nil
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnv("REDIS_ENABLED", "false") == "true",
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
		Key:      utils.GetEnv("REDIS_SNAPSHOT_KEY", "tinyplanet:snapshot"),
		Channel:  utils.GetEnv("REDIS_SNAPSHOT_CHANNEL", "tinyplanet:snapshots"),
	}
}

func loadServerConfig() ServerConfig {
	readTimeout := utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)
	writeTimeout := utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)
	idleTimeout := utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)

	return ServerConfig{
		Port:         utils.GetEnv("SERVER_PORT", "8080"),
		URL:          utils.GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")
	format := utils.GetEnv("LOG_FORMAT", "text")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		Format:     format,
		JSONFormat: environment == "production" || format == "json",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RequestsPerSecond: utils.GetEnvFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 20),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 40),
	}
}

func loadPlanetConfig() (PlanetConfig, error) {
	cfg := PlanetConfig{
		Surface: surface.Config{
			Seed:        uint32(utils.GetEnvInt("PLANET_SEED", 11)),
			Radius:      float32(utils.GetEnvFloat("PLANET_RADIUS", 300)),
			Resolution:  utils.GetEnvInt("PLANET_RESOLUTION", 360),
			Amplitude:   float32(utils.GetEnvFloat("PLANET_AMPLITUDE", 12)),
			Frequency:   utils.GetEnvFloat("PLANET_FREQUENCY", 1.5),
			Octaves:     uint32(utils.GetEnvInt("PLANET_OCTAVES", 3)),
			Persistence: float32(utils.GetEnvFloat("PLANET_PERSISTENCE", 0.5)),
			Lacunarity:  float32(utils.GetEnvFloat("PLANET_LACUNARITY", 2)),
			WarpFactor:  float32(utils.GetEnvFloat("PLANET_WARP_FACTOR", 0.8)),
		},
		TileSize:   float32(utils.GetEnvFloat("PLANET_TILE_SIZE", 20)),
		ConfigPath: utils.GetEnv("PLANET_CONFIG_PATH", ""),
	}

	if cfg.ConfigPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read planet config: %w", err)
	}
	// Fields missing from the file keep their environment values.
	if err := yaml.Unmarshal(data, &cfg.Surface); err != nil {
		return cfg, fmt.Errorf("failed to parse planet config: %w", err)
	}
	return cfg, nil
}

func loadSimulationConfig() SimulationConfig {
	commandTimeout := utils.GetEnvInt("SIM_COMMAND_TIMEOUT_MS", 2000)

	return SimulationConfig{
		TickHz:         utils.GetEnvInt("SIM_TICK_HZ", 20),
		CommandTimeout: time.Duration(commandTimeout) * time.Millisecond,
		MaxCableLength: float32(utils.GetEnvFloat("SIM_MAX_CABLE_LENGTH", 200)),
		HandDamage:     utils.GetEnvInt("SIM_HAND_DAMAGE", 10),
		LandingIndex:   utils.GetEnvInt("SIM_LANDING_INDEX", 0),
		StartingWood:   utils.GetEnvInt("SIM_STARTING_WOOD", 40),
		StartingStone:  utils.GetEnvInt("SIM_STARTING_STONE", 0),
		StartingCopper: utils.GetEnvInt("SIM_STARTING_COPPER", 0),
		CatalogPath:    utils.GetEnv("CATALOG_PATH", ""),
	}
}

func loadPOIConfig() POIConfig {
	return POIConfig{
		Frequency:         utils.GetEnvFloat("POI_FREQUENCY", 1.5),
		TreeProbability:   utils.GetEnvFloat("POI_TREE_PROBABILITY", 0.35),
		StoneProbability:  utils.GetEnvFloat("POI_STONE_PROBABILITY", 0.15),
		CopperProbability: utils.GetEnvFloat("POI_COPPER_PROBABILITY", 0.05),
	}
}

func loadStreamConfig() StreamConfig {
	writeTimeout := utils.GetEnvInt("STREAM_WRITE_TIMEOUT_SECONDS", 10)
	pingInterval := utils.GetEnvInt("STREAM_PING_INTERVAL_SECONDS", 30)

	return StreamConfig{
		Enabled:      utils.GetEnv("STREAM_ENABLED", "true") == "true",
		PublishEvery: utils.GetEnvInt("STREAM_PUBLISH_EVERY_TICKS", 2),
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		PingInterval: time.Duration(pingInterval) * time.Second,
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Server.URL == "" {
		return fmt.Errorf("SERVER_URL is required")
	}

	if err := c.Planet.Surface.Validate(); err != nil {
		return fmt.Errorf("planet: %w", err)
	}

	if c.Planet.TileSize <= 0 {
		return fmt.Errorf("PLANET_TILE_SIZE must be positive")
	}

	if c.Simulation.TickHz <= 0 || c.Simulation.TickHz > 1000 {
		return fmt.Errorf("SIM_TICK_HZ must be between 1 and 1000")
	}

	if c.Simulation.MaxCableLength <= 0 {
		return fmt.Errorf("SIM_MAX_CABLE_LENGTH must be positive")
	}

	if c.Simulation.HandDamage <= 0 {
		return fmt.Errorf("SIM_HAND_DAMAGE must be positive")
	}

	for name, p := range map[string]float64{
		"POI_TREE_PROBABILITY":   c.POI.TreeProbability,
		"POI_STONE_PROBABILITY":  c.POI.StoneProbability,
		"POI_COPPER_PROBABILITY": c.POI.CopperProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_SIZE")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn or error")
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}

	if c.Stream.PublishEvery <= 0 {
		return fmt.Errorf("STREAM_PUBLISH_EVERY_TICKS must be positive")
	}

	return nil
}
