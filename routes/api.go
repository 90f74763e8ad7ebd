package routes

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alekreuaya/lucky-naga/controller"
)

func InitRoutes() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Content-Type, Access-Control-Allow-Headers, Authorization, X-Requested-With",
		AllowMethods: "*",
	}))

	api := app.Group("/api")
	api.All("/service-status", controller.ServiceStatusCheck)
	api.Get("/prizes", controller.GetPrizes)
	api.Get("/history", controller.GetHistory)
	api.Post("/spin", controller.SpinWheel)

	admin := api.Group("/admin")
	admin.Post("/login", controller.AdminLogin)
	admin.Post("/change-password", controller.ChangePassword)
	admin.Post("/create-admin", controller.CreateAdmin)
	admin.Get("/admins", controller.GetAdmins)
	admin.Delete("/admins/:username", controller.DeleteAdmin)
	admin.Post("/generate-codes", controller.GenerateCodes)
	admin.Get("/codes", controller.GetCodes)
	admin.Get("/codes/export", controller.ExportCodes)
	admin.Get("/prizes", controller.AdminGetPrizes)
	admin.Put("/prizes", controller.UpdatePrizes)
	admin.Get("/stats", controller.GetStats)

	return app
}
