package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string
	CORSOrigins []string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	ReferralBonusPercent decimal.Decimal
	MinWithdrawal        decimal.Decimal

	// Wallets maps a crypto type to the static platform address users deposit to.
	Wallets map[string]string

	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	HorizonURL           string
	StellarPayoutAccount string

	MaturitySchedule string
	RateLimitRPS     float64
	RateLimitBurst   int
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:      splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AdminEmail:       strings.ToLower(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		Wallets: map[string]string{
			models.CryptoBTC:  os.Getenv("WALLET_BTC"),
			models.CryptoETH:  os.Getenv("WALLET_ETH"),
			models.CryptoUSDT: os.Getenv("WALLET_USDT"),
			models.CryptoXLM:  os.Getenv("WALLET_XLM"),
		},
		StorageEndpoint:      os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:        getEnvOrDefault("STORAGE_REGION", "us-east-1"),
		StorageBucket:        getEnvOrDefault("STORAGE_BUCKET", "deposit-proofs"),
		StorageAccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		StoragePublicURL:     os.Getenv("STORAGE_PUBLIC_URL"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "no-reply@coinvest.local"),
		HorizonURL:           getEnvOrDefault("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		StellarPayoutAccount: os.Getenv("STELLAR_PAYOUT_ACCOUNT"),
		MaturitySchedule:     getEnvOrDefault("MATURITY_SCHEDULE", "@every 1h"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret + ":refresh"
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL, err = getDuration("RESET_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReferralBonusPercent, err = getDecimal("REFERRAL_BONUS_PERCENT", "5"); err != nil {
		return nil, err
	}
	if cfg.MinWithdrawal, err = getDecimal("MIN_WITHDRAWAL", "10"); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = strconv.Atoi(getEnvOrDefault("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT value: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnvOrDefault("RATE_LIMIT_RPS", "1"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS value: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnvOrDefault("RATE_LIMIT_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST value: %w", err)
	}

	return cfg, nil
}

// WalletFor returns the configured deposit address for a crypto type.
func (c *Config) WalletFor(cryptoType string) (string, bool) {
	addr, ok := c.Wallets[cryptoType]
	return addr, ok && addr != ""
}

// ConfiguredWallets lists only the crypto types that have an address.
func (c *Config) ConfiguredWallets() map[string]string {
	out := make(map[string]string, len(c.Wallets))
	for k, v := range c.Wallets {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
