package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"adyenbridge/internal/adyen"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Adyen    AdyenConfig
	API      APIConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// AdyenConfig holds the gateway account settings.
type AdyenConfig struct {
	APIKey          string
	MerchantAccount string
	HMACKey         string
	Environment     string // "sandbox" or "live"
}

// APIConfig holds the platform-facing API key.
type APIConfig struct {
	Key string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("ADYEN_ENVIRONMENT", "live")

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Adyen: AdyenConfig{
			APIKey:          viper.GetString("ADYEN_API_KEY"),
			MerchantAccount: viper.GetString("ADYEN_MERCHANT_ACCOUNT"),
			HMACKey:         viper.GetString("ADYEN_HMAC_KEY"),
			Environment:     viper.GetString("ADYEN_ENVIRONMENT"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
	}

	if cfg.Adyen.APIKey == "" {
		log.Println("WARNING: ADYEN_API_KEY is not set")
	}
	if cfg.Adyen.MerchantAccount == "" {
		log.Println("WARNING: ADYEN_MERCHANT_ACCOUNT is not set")
	}

	return cfg, nil
}

// Credentials builds the immutable gateway credential value.
func (a *AdyenConfig) Credentials() adyen.Credentials {
	return adyen.Credentials{
		APIKey:          a.APIKey,
		MerchantAccount: a.MerchantAccount,
		HMACKey:         a.HMACKey,
		Environment:     adyen.Environment(a.Environment),
	}
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
