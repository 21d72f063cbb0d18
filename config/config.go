package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB   int    `mapstructure:"REDIS_SESSION_DB"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Booking flow tuning.
	SlotLockTTLSeconds int `mapstructure:"SLOT_LOCK_TTL_SECONDS"`
	SessionTTLMinutes  int `mapstructure:"SESSION_TTL_MINUTES"`

	// PayHere merchant credentials.
	PayHereMerchantID string `mapstructure:"PAYHERE_MERCHANT_ID"`
	PayHereSecret     string `mapstructure:"PAYHERE_MERCHANT_SECRET"`
	PayHereBaseURL    string `mapstructure:"PAYHERE_BASE_URL"`
	PayHereCurrency   string `mapstructure:"PAYHERE_CURRENCY"`

	// Zoom server-to-server OAuth app.
	ZoomAccountID    string `mapstructure:"ZOOM_ACCOUNT_ID"`
	ZoomClientID     string `mapstructure:"ZOOM_CLIENT_ID"`
	ZoomClientSecret string `mapstructure:"ZOOM_CLIENT_SECRET"`

	// Public URLs handed to the payment provider.
	PaymentReturnURL string `mapstructure:"PAYMENT_RETURN_URL"`
	PaymentCancelURL string `mapstructure:"PAYMENT_CANCEL_URL"`
	PaymentNotifyURL string `mapstructure:"PAYMENT_NOTIFY_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "edimy")
	viper.SetDefault("SLOT_LOCK_TTL_SECONDS", 600)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("PAYHERE_BASE_URL", "https://sandbox.payhere.lk")
	viper.SetDefault("PAYHERE_CURRENCY", "LKR")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
