package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider identifiers accepted in FALLBACK_ORDER and by the backfill --service flag.
const (
	ProviderExchangeRateAPI   = "exchange_rate_api"
	ProviderOpenExchangeRates = "open_exchange_rates"
	ProviderWorldBank         = "world_bank"
)

// DefaultFallbackOrder is used when FALLBACK_ORDER is unset.
var DefaultFallbackOrder = []string{ProviderExchangeRateAPI, ProviderOpenExchangeRates, ProviderWorldBank}

// ExchangeRateAPIConfig configures the exchangerate-api.com adapter.
type ExchangeRateAPIConfig struct {
	BaseURL string
	Version string
	Token   string
}

// OpenExchangeRatesConfig configures the openexchangerates.org adapter.
type OpenExchangeRatesConfig struct {
	BaseURL string
	AppID   string
}

// WorldBankConfig configures the World Bank indicator adapter.
type WorldBankConfig struct {
	BaseURL   string
	CacheTTL  time.Duration
	CacheSize int
}

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string
	JWTSecret      string

	CORSAllowedOrigins []string
	RateLimit          string
	RedisURL           string
	MetricsNamespace   string

	FallbackOrder     []string
	HTTPTimeout       time.Duration
	HTTPMaxRetries    int
	StoreInverseRates bool

	ExchangeRateAPI   ExchangeRateAPIConfig
	OpenExchangeRates OpenExchangeRatesConfig
	WorldBank         WorldBankConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("METRICS_NAMESPACE", "exchange_rates_service")
	viper.SetDefault("FALLBACK_ORDER", strings.Join(DefaultFallbackOrder, ","))
	viper.SetDefault("HTTP_TIMEOUT", "10s")
	viper.SetDefault("HTTP_MAX_RETRIES", 2)
	viper.SetDefault("STORE_INVERSE_RATES", false)
	viper.SetDefault("EXCHANGE_RATE_API_BASE_URL", "https://v6.exchangerate-api.com")
	viper.SetDefault("EXCHANGE_RATE_API_VERSION", "v6")
	viper.SetDefault("EXCHANGE_RATE_API_TOKEN", "")
	viper.SetDefault("OPEN_EXCHANGE_RATE_BASE_URL", "https://openexchangerates.org/api")
	viper.SetDefault("OPEN_EXCHANGE_RATE_APP_ID", "")
	viper.SetDefault("WORLD_BANK_BASE_URL", "https://api.worldbank.org/v2")
	viper.SetDefault("WORLD_BANK_CACHE_TTL", "24h")
	viper.SetDefault("WORLD_BANK_CACHE_SIZE", 32)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. Admin endpoints will reject every request.")
	}

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.MetricsNamespace = viper.GetString("METRICS_NAMESPACE")

	order, err := parseFallbackOrder(viper.GetString("FALLBACK_ORDER"))
	if err != nil {
		return nil, err
	}
	cfg.FallbackOrder = order

	cfg.HTTPTimeout = durationOrDefault("HTTP_TIMEOUT", 10*time.Second)
	cfg.HTTPMaxRetries = viper.GetInt("HTTP_MAX_RETRIES")
	if cfg.HTTPMaxRetries < 0 {
		log.Printf("Warning: Invalid value for HTTP_MAX_RETRIES (%d). Defaulting to 0.\n", cfg.HTTPMaxRetries)
		cfg.HTTPMaxRetries = 0
	}
	cfg.StoreInverseRates = viper.GetBool("STORE_INVERSE_RATES")

	cfg.ExchangeRateAPI = ExchangeRateAPIConfig{
		BaseURL: strings.TrimRight(viper.GetString("EXCHANGE_RATE_API_BASE_URL"), "/"),
		Version: viper.GetString("EXCHANGE_RATE_API_VERSION"),
		Token:   viper.GetString("EXCHANGE_RATE_API_TOKEN"),
	}
	if cfg.ExchangeRateAPI.Token == "" {
		log.Println("Warning: EXCHANGE_RATE_API_TOKEN not set. ExchangeRate-API requests will fail.")
	}

	cfg.OpenExchangeRates = OpenExchangeRatesConfig{
		BaseURL: strings.TrimRight(viper.GetString("OPEN_EXCHANGE_RATE_BASE_URL"), "/"),
		AppID:   viper.GetString("OPEN_EXCHANGE_RATE_APP_ID"),
	}
	if cfg.OpenExchangeRates.AppID == "" {
		log.Println("Warning: OPEN_EXCHANGE_RATE_APP_ID not set. Open Exchange Rates requests will fail.")
	}

	cfg.WorldBank = WorldBankConfig{
		BaseURL:   strings.TrimRight(viper.GetString("WORLD_BANK_BASE_URL"), "/"),
		CacheTTL:  durationOrDefault("WORLD_BANK_CACHE_TTL", 24*time.Hour),
		CacheSize: viper.GetInt("WORLD_BANK_CACHE_SIZE"),
	}
	if cfg.WorldBank.CacheSize <= 0 {
		cfg.WorldBank.CacheSize = 32
	}

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseFallbackOrder validates a comma-separated list of provider identifiers.
func parseFallbackOrder(raw string) ([]string, error) {
	names := splitList(strings.ToLower(raw))
	if len(names) == 0 {
		return append([]string(nil), DefaultFallbackOrder...), nil
	}
	seen := make(map[string]struct{}, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		switch name {
		case ProviderExchangeRateAPI, ProviderOpenExchangeRates, ProviderWorldBank:
		default:
			return nil, fmt.Errorf("unknown provider %q in FALLBACK_ORDER", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}
	return order, nil
}
