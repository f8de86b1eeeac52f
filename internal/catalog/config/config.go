package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redone-net/marketplace/pkg/logger"
	"github.com/spf13/viper"
)

// MustInit loads the catalog service configuration and sets up logging.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/catalog-service")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

// SetupLogger installs the default slog logger.
func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
