// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Scan     ScanConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	AnomalyTTLSeconds int
}

// ScanConfig carries the anomaly scan knobs. Every field has an env
// default so a scan can run with zero configuration.
type ScanConfig struct {
	LookbackDays  int
	RecentDays    int
	MinPoints     int
	RollingWindow int
	MinHistory    int
	ZLow          float64
	ZMed          float64
	ZHigh         float64
	NotifyCap     int
	Workers       int
}

type ForecastConfig struct {
	LookbackDays   int
	HorizonDays    int
	BacktestDays   int
	TimeoutSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "warewolf")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANOMALY_TTL_SECONDS", 60)
		viper.SetDefault("SCAN_LOOKBACK_DAYS", 120)
		viper.SetDefault("SCAN_RECENT_DAYS", 14)
		viper.SetDefault("SCAN_MIN_POINTS", 21)
		viper.SetDefault("SCAN_ROLLING_WINDOW", 14)
		viper.SetDefault("SCAN_MIN_HISTORY", 7)
		viper.SetDefault("SCAN_Z_LOW", 3.0)
		viper.SetDefault("SCAN_Z_MED", 4.0)
		viper.SetDefault("SCAN_Z_HIGH", 5.0)
		viper.SetDefault("SCAN_NOTIFY_CAP", 25)
		viper.SetDefault("SCAN_WORKERS", 4)
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 180)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_BACKTEST_DAYS", 14)
		viper.SetDefault("FORECAST_TIMEOUT_SECONDS", 10)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				AnomalyTTLSeconds: viper.GetInt("CACHE_ANOMALY_TTL_SECONDS"),
			},
			Scan: ScanConfig{
				LookbackDays:  viper.GetInt("SCAN_LOOKBACK_DAYS"),
				RecentDays:    viper.GetInt("SCAN_RECENT_DAYS"),
				MinPoints:     viper.GetInt("SCAN_MIN_POINTS"),
				RollingWindow: viper.GetInt("SCAN_ROLLING_WINDOW"),
				MinHistory:    viper.GetInt("SCAN_MIN_HISTORY"),
				ZLow:          viper.GetFloat64("SCAN_Z_LOW"),
				ZMed:          viper.GetFloat64("SCAN_Z_MED"),
				ZHigh:         viper.GetFloat64("SCAN_Z_HIGH"),
				NotifyCap:     viper.GetInt("SCAN_NOTIFY_CAP"),
				Workers:       viper.GetInt("SCAN_WORKERS"),
			},
			Forecast: ForecastConfig{
				LookbackDays:   viper.GetInt("FORECAST_LOOKBACK_DAYS"),
				HorizonDays:    viper.GetInt("FORECAST_HORIZON_DAYS"),
				BacktestDays:   viper.GetInt("FORECAST_BACKTEST_DAYS"),
				TimeoutSeconds: viper.GetInt("FORECAST_TIMEOUT_SECONDS"),
			},
		}
	})

	return instance
}
