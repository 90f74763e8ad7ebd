package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/alekreuaya/lucky-naga/auth"
	"github.com/alekreuaya/lucky-naga/config"
	"github.com/alekreuaya/lucky-naga/controller"
	"github.com/alekreuaya/lucky-naga/model"
	"github.com/alekreuaya/lucky-naga/routes"
	"github.com/alekreuaya/lucky-naga/storage"
	"github.com/alekreuaya/lucky-naga/utils"
	"github.com/alekreuaya/lucky-naga/wheel"
)

func main() {
	fmt.Println("Hello - wheel-service: 9000")
	utils.InitializeViper("config", "yml")
	config.InitializeConfig()
	config.ConnectDb()
	defer config.DB.Close()

	store := storage.NewPostgres(config.DB)
	if err := seedDefaults(context.Background(), store); err != nil {
		utils.LogMessage(utils.CRITICAL, "main: seeding defaults failed, error: "+err.Error(), config.ServiceName)
		panic(err)
	}

	wheelService := wheel.NewService(nil, store)
	tokens := auth.NewManager(config.JWTSecret, 24*time.Hour)
	controller.Setup(store, wheelService, tokens)

	server := routes.InitRoutes()
	listenAddress := viper.GetString("listen_address")
	if listenAddress == "" {
		listenAddress = "0.0.0.0:9000"
	}
	server.Listen(listenAddress)
}

// seedDefaults installs the default prize pool and the master account
// on a fresh database. Existing data is left untouched.
func seedDefaults(ctx context.Context, store storage.Store) error {
	prizes, err := store.GetPrizes(ctx)
	if err != nil {
		return err
	}
	if len(prizes) == 0 {
		defaults := make([]model.Prize, len(model.DefaultPrizes))
		copy(defaults, model.DefaultPrizes)
		for i := range defaults {
			defaults[i].Id = uuid.NewString()
		}
		if err := store.ReplacePrizes(ctx, defaults); err != nil {
			return err
		}
		utils.LogMessage(utils.INFO, "main: installed default prize pool", config.ServiceName)
	}
	if _, err := store.FindAdmin(ctx, config.MasterUsername); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		hash, err := utils.HashPassword(config.MasterPassword)
		if err != nil {
			return err
		}
		account := &model.AdminAccount{
			Username:     config.MasterUsername,
			PasswordHash: hash,
			Role:         model.RoleMaster,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.InsertAdmin(ctx, account); err != nil {
			return err
		}
		utils.LogMessage(utils.INFO, "main: created master account "+config.MasterUsername, config.ServiceName)
	}
	return nil
}
