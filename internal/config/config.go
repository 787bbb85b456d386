package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/fishcost/internal/costing"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultEnv           = "development"
	defaultSessionTTL    = 12 * time.Hour
	defaultSweepSchedule = "@every 10m"
	defaultLogLevel      = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	Port           string
	DBPath         string
	MigrateOnStart bool
	SessionSecret  string
	SessionIdleTTL time.Duration
	SweepSchedule  string
	LogLevel       string
	Plant          PlantConfig
}

// PlantConfig holds the plant constants that calculations fall back to.
type PlantConfig struct {
	BoxWeightKg       float64
	TestMinutes       float64
	ShiftHours        float64
	YieldDefinition   costing.YieldDefinition
	TargetYield       float64
	LowYieldThreshold float64
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:           getenvWithDefault("APP_ENV", defaultEnv),
		Port:          getenvWithDefault("PORT", defaultPort),
		DBPath:        getenvWithDefault("DB_PATH", defaultDBPath),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SweepSchedule: getenvWithDefault("SWEEP_SCHEDULE", defaultSweepSchedule),
		LogLevel:      getenvWithDefault("LOG_LEVEL", defaultLogLevel),
	}

	var err error
	if cfg.SessionIdleTTL, err = durationEnv("SESSION_IDLE_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = boolEnv("MIGRATIONS_ON_START", cfg.IsDev()); err != nil {
		return Config{}, err
	}
	if cfg.Plant, err = plantFromEnv(); err != nil {
		return Config{}, err
	}

	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg, nil
}

// LoadPlant reads only the plant constants, for tools that do not run the server.
func LoadPlant() (PlantConfig, error) {
	if err := loadDotEnv(".env"); err != nil {
		return PlantConfig{}, err
	}
	return plantFromEnv()
}

// Apply fills the zero-valued plant constants of s from p.
func (p PlantConfig) Apply(s costing.Scenario) costing.Scenario {
	if s.BoxWeightKg <= 0 {
		s.BoxWeightKg = p.BoxWeightKg
	}
	if s.TestMinutes <= 0 {
		s.TestMinutes = p.TestMinutes
	}
	if s.ShiftHours <= 0 {
		s.ShiftHours = p.ShiftHours
	}
	if s.YieldDefinition == "" {
		s.YieldDefinition = p.YieldDefinition
	}
	if s.TargetYield <= 0 {
		s.TargetYield = p.TargetYield
	}
	if s.LowYieldThreshold <= 0 {
		s.LowYieldThreshold = p.LowYieldThreshold
	}
	return s
}

func plantFromEnv() (PlantConfig, error) {
	var (
		p   PlantConfig
		err error
	)
	if p.BoxWeightKg, err = positiveFloatEnv("BOX_WEIGHT_KG", costing.DefaultBoxWeightKg); err != nil {
		return p, err
	}
	if p.TestMinutes, err = positiveFloatEnv("TEST_MINUTES", costing.DefaultTestMinutes); err != nil {
		return p, err
	}
	if p.ShiftHours, err = positiveFloatEnv("SHIFT_HOURS", costing.DefaultShiftHours); err != nil {
		return p, err
	}
	if p.TargetYield, err = positiveFloatEnv("TARGET_YIELD", costing.DefaultTargetYield); err != nil {
		return p, err
	}
	if p.LowYieldThreshold, err = positiveFloatEnv("LOW_YIELD_THRESHOLD", costing.DefaultLowYieldThreshold); err != nil {
		return p, err
	}
	if p.YieldDefinition, err = costing.ParseYieldDefinition(os.Getenv("YIELD_DEFINITION")); err != nil {
		return p, fmt.Errorf("YIELD_DEFINITION: %w", err)
	}
	return p, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func positiveFloatEnv(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return value, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return value, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}
