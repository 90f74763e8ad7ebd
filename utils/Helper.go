package utils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/phuslu/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

var IsTestMode bool = false
var CachePrefix string = "CACHE_MANAGER_"

const (
	CRITICAL = "critical"
	ERROR    = "error"
	WARNING  = "warning"
	INFO     = "info"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func InitializeViper(configName string, configType string) {
	viper.SetConfigName(configName)
	if IsTestMode {
		fmt.Println("Running in Test mode...")
		viper.AddConfigPath("../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/app")
	}
	viper.AutomaticEnv()
	viper.SetConfigType(configType)
	if err := viper.ReadInConfig(); err != nil {
		LogMessage(WARNING, "Unable to read config file, relying on environment: "+err.Error(), "startup")
	}
}

// Logger carries an optional log payload into JsonErrorResponse so a
// handler can report a client error and record the server-side cause in
// one call.
type Logger struct {
	LogLevel    string
	Message     string
	ServiceName string
}

func LogMessage(logLevel string, message string, service string) {
	entry := log.Info()
	switch strings.ToLower(logLevel) {
	case CRITICAL, ERROR:
		entry = log.Error()
	case WARNING:
		entry = log.Warn()
	case "debug":
		entry = log.Debug()
	}
	entry.Str("service", service).Msg(message)
}

func JsonErrorResponse(c *fiber.Ctx, statusCode int, message string, logger ...Logger) error {
	if len(logger) > 0 {
		LogMessage(logger[0].LogLevel, logger[0].Message, logger[0].ServiceName)
	}
	c.SendStatus(statusCode)
	return c.JSON(fiber.Map{"status": statusCode, "message": message})
}
