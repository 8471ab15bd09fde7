/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the payments-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	SessionJWTSecret         string `mapstructure:"SESSION_JWT_SECRET"`
	RazorpayKeyID            string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret        string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayBaseURL          string `mapstructure:"RAZORPAY_BASE_URL"`
	SubscriptionTrialDays    int    `mapstructure:"SUBSCRIPTION_TRIAL_DAYS"`
	ExpirySweepSchedule      string `mapstructure:"EXPIRY_SWEEP_SCHEDULE"`
	OverdueReminderSchedule  string `mapstructure:"OVERDUE_REMINDER_SCHEDULE"`
	SubmitRateLimitPerMinute int    `mapstructure:"SUBMIT_RATE_LIMIT_PER_MINUTE"`
	OrderRateLimitPerMinute  int    `mapstructure:"ORDER_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "payments:rate_limit")
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("SUBSCRIPTION_TRIAL_DAYS", 30)
	viper.SetDefault("EXPIRY_SWEEP_SCHEDULE", "0 2 * * *")
	viper.SetDefault("OVERDUE_REMINDER_SCHEDULE", "0 9 * * *")
	viper.SetDefault("SUBMIT_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("ORDER_RATE_LIMIT_PER_MINUTE", 20)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "PAYMENTS_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SESSION_JWT_SECRET")
	_ = viper.BindEnv("RAZORPAY_KEY_ID")
	_ = viper.BindEnv("RAZORPAY_KEY_SECRET")
	_ = viper.BindEnv("RAZORPAY_BASE_URL")
	_ = viper.BindEnv("SUBSCRIPTION_TRIAL_DAYS")
	_ = viper.BindEnv("EXPIRY_SWEEP_SCHEDULE")
	_ = viper.BindEnv("OVERDUE_REMINDER_SCHEDULE")
	_ = viper.BindEnv("SUBMIT_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("ORDER_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "payments:rate_limit"
	}
	config.RazorpayBaseURL = strings.TrimSpace(config.RazorpayBaseURL)

	if config.SubscriptionTrialDays <= 0 {
		config.SubscriptionTrialDays = 30
	}
	if strings.TrimSpace(config.ExpirySweepSchedule) == "" {
		config.ExpirySweepSchedule = "0 2 * * *"
	}
	if strings.TrimSpace(config.OverdueReminderSchedule) == "" {
		config.OverdueReminderSchedule = "0 9 * * *"
	}
	if config.SubmitRateLimitPerMinute <= 0 {
		config.SubmitRateLimitPerMinute = 10
	}
	if config.OrderRateLimitPerMinute <= 0 {
		config.OrderRateLimitPerMinute = 20
	}

	return
}
