package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/alekreuaya/lucky-naga/auth"
	"github.com/alekreuaya/lucky-naga/config"
	"github.com/alekreuaya/lucky-naga/storage"
	"github.com/alekreuaya/lucky-naga/utils"
	"github.com/alekreuaya/lucky-naga/wheel"
)

var Validate = validator.New()

var Store storage.Store
var Wheel *wheel.Service
var Tokens *auth.Manager

const historyPageSize = 50
const cacheTTL = 30 * time.Second

// Setup injects the handler dependencies. main wires the Postgres
// store; tests wire the in-memory one.
func Setup(store storage.Store, wheelService *wheel.Service, tokens *auth.Manager) {
	Store = store
	Wheel = wheelService
	Tokens = tokens
}

func ServiceStatusCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": 200, "message": "This API service is running!"})
}

// cache reads/writes are best effort: no redis client or a redis error
// just falls through to the store.
func cachedJSON(c *fiber.Ctx, key string) bool {
	if config.Redis == nil {
		return false
	}
	val, err := config.Redis.Get(c.Context(), utils.CachePrefix+key).Result()
	if err != nil {
		return false
	}
	c.Set("Content-Type", "application/json")
	c.SendString(val)
	return true
}

func cacheJSON(c *fiber.Ctx, key string, payload interface{}) {
	if config.Redis == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	config.Redis.Set(c.Context(), utils.CachePrefix+key, raw, cacheTTL)
}

func invalidateCache(c *fiber.Ctx, keys ...string) {
	if config.Redis == nil {
		return
	}
	for _, key := range keys {
		config.Redis.Del(c.Context(), utils.CachePrefix+key)
	}
}

func GetPrizes(c *fiber.Ctx) error {
	if cachedJSON(c, "prizes") {
		return nil
	}
	prizes, err := Store.GetPrizes(c.Context())
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get prizes failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GetPrizes: Unable to get prize data, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	payload := fiber.Map{"prizes": prizes}
	cacheJSON(c, "prizes", payload)
	return c.JSON(payload)
}

func GetHistory(c *fiber.Ctx) error {
	if cachedJSON(c, "history") {
		return nil
	}
	history, err := Store.ListDraws(c.Context(), historyPageSize)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get history failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GetHistory: Unable to get draw history, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	payload := fiber.Map{"history": history}
	cacheJSON(c, "history", payload)
	return c.JSON(payload)
}

func SpinWheel(c *fiber.Ctx) error {
	type FormData struct {
		Username   string `json:"username" validate:"required,min=1,max=100"`
		RedeemCode string `json:"redeem_code" validate:"required,min=1,max=32"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	result, err := Wheel.Spin(c.Context(), formData.Username, formData.RedeemCode)
	if err != nil {
		switch {
		case errors.Is(err, wheel.ErrInvalidCredentials):
			return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Invalid username or redeem code")
		case errors.Is(err, wheel.ErrCodeAlreadyConsumed):
			return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "This redeem code has already been used")
		case errors.Is(err, wheel.ErrNoPrizesConfigured), errors.Is(err, wheel.ErrNoEligiblePrizes):
			return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "No prizes configured", utils.Logger{
				LogLevel:    utils.CRITICAL,
				Message:     "SpinWheel: spin rejected, error: " + err.Error(),
				ServiceName: config.ServiceName,
			})
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Spin failed, system error. please try again later", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "SpinWheel: Unable to complete spin, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	invalidateCache(c, "history")
	return c.JSON(fiber.Map{"prize": result.Prize, "message": result.Message})
}
