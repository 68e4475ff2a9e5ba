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

	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	infrapdf "github.com/jhoicas/Kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/seed"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacén de estado: fallo al abrir degrada a solo-memoria, nunca aborta.
	var stateStore kardex.StateStore
	if cfg.Store.Path != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.Store.Path, cfg.Store.StateKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("almacén de estado no disponible; kardex solo en memoria")
		} else {
			stateStore = sqliteStore
			defer sqliteStore.Close()
		}
	}

	// Seed: ambos feeds en paralelo, con timeout; degrada a vacío.
	loader := seed.NewLoader(seed.Config{
		ItemsURL:         cfg.Seed.ItemsURL,
		RequestsURL:      cfg.Seed.RequestsURL,
		DefaultWarehouse: cfg.Seed.DefaultWarehouse,
		Timeout:          cfg.Seed.Timeout,
		RawPrefixes:      cfg.Seed.RawPrefixes,
		FinishedPrefixes: cfg.Seed.FinishedPrefixes,
	}, log)

	seedCtx, cancelSeed := context.WithTimeout(ctx, cfg.Seed.Timeout+time.Second)
	seedResult := loader.Load(seedCtx)
	cancelSeed()

	// Estado persistido de la sesión anterior (nil si no hay o es ilegible).
	var persisted *kardex.PersistedState
	if stateStore != nil {
		persisted, err = stateStore.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("lectura del estado persistido; se arranca solo con seed")
		}
	}

	// El motor no acepta mutaciones hasta Initialize (ErrNotReady antes).
	engine := kardex.NewEngine(stateStore, log)
	balances, ledger := kardex.MergeStartupState(persisted, seedResult.OpeningBalances, seedResult.OpeningLedger)
	engine.Initialize(seedResult.Items, cfg.Seed.DefaultWarehouse, balances, ledger)
	log.Info().
		Int("items", len(seedResult.Items)).
		Int("ledger", len(ledger)).
		Msg("kardex inicializado")

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ready": engine.Ready()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Kardex: httpRouter.NewKardexHandler(engine),
		Export: httpRouter.NewExportHandler(engine, infrapdf.NewMarotoReportGenerator()),
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
