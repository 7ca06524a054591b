package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/db"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/models/entities"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is read once at process start from the environment
type Config struct {
	AppEnv   string
	HTTPAddr string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheBackend  string

	TokenSecret string

	// Owner deploys the ledger, App is the identity the ledger authorizes
	Owner entities.Address
	App   entities.Address

	StatusPollInterval time.Duration
	// ConfigArtifact is where bootstrap writes and oracled reads the deployment summary
	ConfigArtifact    string
	StatusProviderURL string
	StatusProviderKey string

	Params ledger.Params
}

// Load reads the environment, applying defaults for anything unset
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DBDriver:          getEnv("DB_DRIVER", db.DriverSQLite),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CacheBackend:      getEnv("CACHE_BACKEND", CacheBackendMemory),
		TokenSecret:       os.Getenv("TOKEN_SECRET"),
		ConfigArtifact:    getEnv("SURETY_CONFIG_PATH", "surety-config.json"),
		StatusProviderURL: os.Getenv("STATUS_PROVIDER_URL"),
		StatusProviderKey: os.Getenv("STATUS_PROVIDER_KEY"),
		Params:            ledger.DefaultParams(),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.StatusPollInterval, err = getEnvDuration("STATUS_POLL_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case db.DriverSQLite:
		cfg.DBDSN = getEnv("DB_DSN", "file:surety.db?cache=shared")
	case db.DriverPostgres:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			cfg.DBDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				os.Getenv("PG_USER"),
				os.Getenv("PG_PASSWORD"),
				getEnv("PG_HOST", "localhost"),
				getEnv("PG_PORT", "5432"),
				os.Getenv("PG_DB"),
			)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ADDR")
	}

	if cfg.AppEnv == "production" && cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required in production")
	}

	if cfg.Owner, err = entities.ParseAddress(os.Getenv("SURETY_OWNER")); err != nil {
		return nil, fmt.Errorf("SURETY_OWNER: %w", err)
	}
	if cfg.App, err = entities.ParseAddress(os.Getenv("SURETY_APP")); err != nil {
		return nil, fmt.Errorf("SURETY_APP: %w", err)
	}

	if seed := os.Getenv("SURETY_SEED"); seed != "" {
		cfg.Params.Seed = []byte(seed)
	}
	if err := loadParams(&cfg.Params); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadParams(p *ledger.Params) error {
	var err error
	if p.BootstrapAirlines, err = getEnvInt("SURETY_BOOTSTRAP_AIRLINES", p.BootstrapAirlines); err != nil {
		return err
	}
	if p.Quorum, err = getEnvInt("SURETY_ORACLE_QUORUM", p.Quorum); err != nil {
		return err
	}
	if p.ActivationFunding, err = getEnvEther("SURETY_ACTIVATION_ETHER", p.ActivationFunding); err != nil {
		return err
	}
	if p.InsuranceCap, err = getEnvEther("SURETY_INSURANCE_CAP_ETHER", p.InsuranceCap); err != nil {
		return err
	}
	if p.OracleFee, err = getEnvEther("SURETY_ORACLE_FEE_ETHER", p.OracleFee); err != nil {
		return err
	}
	return p.Validate()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// getEnvEther reads a decimal ether amount, e.g. "0.5"
func getEnvEther(key string, def uint256.Int) (uint256.Int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	amount, err := common.ParseEther(v)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%s: %w", key, err)
	}
	return amount, nil
}
