package config

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

var Redis *redis.Client
var ServiceName string = "wheel-service"
var JWTSecret string
var MasterUsername string
var MasterPassword string

func InitializeConfig() {
	JWTSecret = viper.GetString("jwt_secret")
	if JWTSecret == "" {
		JWTSecret = "lucky-wheel-secret-key-2024"
	}
	MasterUsername = viper.GetString("master.username")
	if MasterUsername == "" {
		MasterUsername = "master"
	}
	MasterPassword = viper.GetString("master.password")
	if MasterPassword == "" {
		MasterPassword = "admin123"
	}
	// cache is optional; handlers fall through to the store when unset
	if host := viper.GetString("redis.host"); host != "" {
		Redis = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", host, viper.GetString("redis.port")),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.database"),
		})
	}
}
