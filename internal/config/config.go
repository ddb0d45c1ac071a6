package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Forum     ForumConfig
	Lottery   LotteryConfig
	Scheduler SchedulerConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// ForumConfig holds the discussion-platform collaborator configuration
type ForumConfig struct {
	BaseURL     string
	APIKey      string
	APIUsername string
	MockForum   bool
}

// LotteryConfig holds the policy limits and trigger filters for lotteries
type LotteryConfig struct {
	MaxWinners        int
	MaxHorizonDays    int
	MinParticipants   int // global floor applied when a template sets none
	FallbackPolicy    string
	TriggerCategories []int
	TriggerTags       []string
	RunningTag        string
	DrawnTag          string
	CancelledTag      string
	CloseOnFinish     bool
}

// SchedulerConfig holds the draw scheduler configuration
type SchedulerConfig struct {
	IntervalSeconds int
	Enabled         bool
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "forum-lottery")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Forum.MockForum", true)
	viper.SetDefault("Lottery.MaxWinners", 50)
	viper.SetDefault("Lottery.MaxHorizonDays", 90)
	viper.SetDefault("Lottery.MinParticipants", 0)
	viper.SetDefault("Lottery.FallbackPolicy", "void")
	viper.SetDefault("Lottery.RunningTag", "lottery-running")
	viper.SetDefault("Lottery.DrawnTag", "lottery-drawn")
	viper.SetDefault("Lottery.CancelledTag", "lottery-cancelled")
	viper.SetDefault("Lottery.CloseOnFinish", true)
	viper.SetDefault("Scheduler.IntervalSeconds", 60)
	viper.SetDefault("Scheduler.Enabled", true)
}
