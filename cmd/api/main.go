package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/bootstrap"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/amqp"
	httpRouter "github.com/maestral4ik/warehouse1/internal/interfaces/http"
	"github.com/maestral4ik/warehouse1/pkg/config"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Str("timezone", cfg.Ledger.Timezone).
		Msg("iniciando aplicación")

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	var publisher inventory.EventPublisher = inventory.NoopPublisher{}
	if cfg.AMQP.Enabled() {
		p, err := amqp.Dial(cfg.AMQP, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión AMQP")
		}
		defer p.Close()
		publisher = p
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publicación de eventos habilitada")
	}

	ucs, err := bootstrap.NewUseCases(cfg, storage, publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("casos de uso")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Warehouse Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     ucs.Auth,
		CategoryUC: ucs.Categories,
		ItemUC:     ucs.Items,
		MovementUC: ucs.Movements,
		ReportUC:   ucs.Reports,
		JWTSecret:  ucs.JWTSecret,
		Logger:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
