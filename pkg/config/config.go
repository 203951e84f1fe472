package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Optimizer OptimizerConfig
	Predictor PredictorConfig
	Order     OrderConfig
	Weather   WeatherConfig
	Runs      RunsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OptimizerConfig carries every tunable of the shoot-day assignment model.
// Penalties and bonuses are explicit configuration so runs are reproducible
// across environments.
type OptimizerConfig struct {
	MaxPagesPerDay        float64
	HorizonDays           int
	LocationChangePenalty float64
	ProximityBonus        float64
	ProximityWindowDays   int
	SetupCostBase         float64
	SetupCostExterior     float64
	SetupCostNight        float64
	RainThresholdPct      int
	WeatherRiskPenalty    float64
	HardWeatherExclusion  bool
	HardRainThresholdPct  int
	SolverTimeBudget      time.Duration
	MaxModelVariables     int
}

// PredictorConfig holds the calibrated linear weights of the scene duration
// model. Recalibration from historical samples only touches configuration,
// never the algorithm.
type PredictorConfig struct {
	MinutesPerPage   float64
	ExteriorMinutes  float64
	NightMinutes     float64
	MinutesPerCast   float64
	MinutesPerShot   float64
	DefaultShotCount int
	ConfidencePct    float64
}

// OrderConfig tunes the within-day running-order scores.
type OrderConfig struct {
	GoodWeatherBonus  float64
	SharedCastBonus   float64
	SameLocationBonus float64
}

// WeatherConfig selects and tunes the forecast provider.
type WeatherConfig struct {
	Provider string // "http" or "static"
	BaseURL  string
	Timeout  time.Duration
}

// RunsConfig governs the optimization run lifecycle.
type RunsConfig struct {
	TTL            time.Duration
	Workers        int
	QueueSize      int
	ResultCacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Optimizer = OptimizerConfig{
		MaxPagesPerDay:        v.GetFloat64("OPTIMIZER_MAX_PAGES_PER_DAY"),
		HorizonDays:           v.GetInt("OPTIMIZER_HORIZON_DAYS"),
		LocationChangePenalty: v.GetFloat64("OPTIMIZER_LOCATION_CHANGE_PENALTY"),
		ProximityBonus:        v.GetFloat64("OPTIMIZER_PROXIMITY_BONUS"),
		ProximityWindowDays:   v.GetInt("OPTIMIZER_PROXIMITY_WINDOW_DAYS"),
		SetupCostBase:         v.GetFloat64("OPTIMIZER_SETUP_COST_BASE"),
		SetupCostExterior:     v.GetFloat64("OPTIMIZER_SETUP_COST_EXTERIOR"),
		SetupCostNight:        v.GetFloat64("OPTIMIZER_SETUP_COST_NIGHT"),
		RainThresholdPct:      v.GetInt("OPTIMIZER_RAIN_THRESHOLD_PCT"),
		WeatherRiskPenalty:    v.GetFloat64("OPTIMIZER_WEATHER_RISK_PENALTY"),
		HardWeatherExclusion:  v.GetBool("OPTIMIZER_HARD_WEATHER_EXCLUSION"),
		HardRainThresholdPct:  v.GetInt("OPTIMIZER_HARD_RAIN_THRESHOLD_PCT"),
		SolverTimeBudget:      parseDuration(v.GetString("OPTIMIZER_SOLVER_TIME_BUDGET"), 20*time.Second),
		MaxModelVariables:     v.GetInt("OPTIMIZER_MAX_MODEL_VARIABLES"),
	}

	cfg.Predictor = PredictorConfig{
		MinutesPerPage:   v.GetFloat64("PREDICTOR_MINUTES_PER_PAGE"),
		ExteriorMinutes:  v.GetFloat64("PREDICTOR_EXTERIOR_MINUTES"),
		NightMinutes:     v.GetFloat64("PREDICTOR_NIGHT_MINUTES"),
		MinutesPerCast:   v.GetFloat64("PREDICTOR_MINUTES_PER_CAST"),
		MinutesPerShot:   v.GetFloat64("PREDICTOR_MINUTES_PER_SHOT"),
		DefaultShotCount: v.GetInt("PREDICTOR_DEFAULT_SHOT_COUNT"),
		ConfidencePct:    v.GetFloat64("PREDICTOR_CONFIDENCE_PCT"),
	}

	cfg.Order = OrderConfig{
		GoodWeatherBonus:  v.GetFloat64("ORDER_GOOD_WEATHER_BONUS"),
		SharedCastBonus:   v.GetFloat64("ORDER_SHARED_CAST_BONUS"),
		SameLocationBonus: v.GetFloat64("ORDER_SAME_LOCATION_BONUS"),
	}

	cfg.Weather = WeatherConfig{
		Provider: v.GetString("WEATHER_PROVIDER"),
		BaseURL:  v.GetString("WEATHER_BASE_URL"),
		Timeout:  parseDuration(v.GetString("WEATHER_TIMEOUT"), 5*time.Second),
	}

	cfg.Runs = RunsConfig{
		TTL:            parseDuration(v.GetString("RUNS_TTL"), time.Hour),
		Workers:        v.GetInt("RUNS_WORKERS"),
		QueueSize:      v.GetInt("RUNS_QUEUE_SIZE"),
		ResultCacheTTL: parseDuration(v.GetString("RUNS_RESULT_CACHE_TTL"), 10*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shootplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPTIMIZER_MAX_PAGES_PER_DAY", 8.0)
	v.SetDefault("OPTIMIZER_HORIZON_DAYS", 30)
	v.SetDefault("OPTIMIZER_LOCATION_CHANGE_PENALTY", 1000.0)
	v.SetDefault("OPTIMIZER_PROXIMITY_BONUS", 50.0)
	v.SetDefault("OPTIMIZER_PROXIMITY_WINDOW_DAYS", 2)
	v.SetDefault("OPTIMIZER_SETUP_COST_BASE", 100.0)
	v.SetDefault("OPTIMIZER_SETUP_COST_EXTERIOR", 50.0)
	v.SetDefault("OPTIMIZER_SETUP_COST_NIGHT", 75.0)
	v.SetDefault("OPTIMIZER_RAIN_THRESHOLD_PCT", 70)
	v.SetDefault("OPTIMIZER_WEATHER_RISK_PENALTY", 700.0)
	v.SetDefault("OPTIMIZER_HARD_WEATHER_EXCLUSION", false)
	v.SetDefault("OPTIMIZER_HARD_RAIN_THRESHOLD_PCT", 95)
	v.SetDefault("OPTIMIZER_SOLVER_TIME_BUDGET", "20s")
	v.SetDefault("OPTIMIZER_MAX_MODEL_VARIABLES", 10000)

	v.SetDefault("PREDICTOR_MINUTES_PER_PAGE", 45.0)
	v.SetDefault("PREDICTOR_EXTERIOR_MINUTES", 15.0)
	v.SetDefault("PREDICTOR_NIGHT_MINUTES", 30.0)
	v.SetDefault("PREDICTOR_MINUTES_PER_CAST", 10.0)
	v.SetDefault("PREDICTOR_MINUTES_PER_SHOT", 20.0)
	v.SetDefault("PREDICTOR_DEFAULT_SHOT_COUNT", 3)
	v.SetDefault("PREDICTOR_CONFIDENCE_PCT", 20.0)

	v.SetDefault("ORDER_GOOD_WEATHER_BONUS", 10.0)
	v.SetDefault("ORDER_SHARED_CAST_BONUS", 5.0)
	v.SetDefault("ORDER_SAME_LOCATION_BONUS", 15.0)

	v.SetDefault("WEATHER_PROVIDER", "static")
	v.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com")
	v.SetDefault("WEATHER_TIMEOUT", "5s")

	v.SetDefault("RUNS_TTL", "1h")
	v.SetDefault("RUNS_WORKERS", 2)
	v.SetDefault("RUNS_QUEUE_SIZE", 16)
	v.SetDefault("RUNS_RESULT_CACHE_TTL", "10m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
