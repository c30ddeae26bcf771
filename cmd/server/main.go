package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/cargolink/internal/config"
	"github.com/example/cargolink/internal/database"
	"github.com/example/cargolink/internal/routes"
	"github.com/example/cargolink/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName: "Cargolink Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg)

	sweep := services.NewSweepService(db, services.NewAuditService(db), cfg.SweepInterval, cfg.SweepStaleAfter)
	sweep.Start(context.Background())

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
