package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/Comisiones-api/docs"
	"github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	infraexport "github.com/jhoicas/Comisiones-api/internal/infrastructure/export"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/extract"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/ocr"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/parsers"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Comisiones-api/internal/interfaces/http"
	"github.com/jhoicas/Comisiones-api/internal/observability/metrics"
	"github.com/jhoicas/Comisiones-api/pkg/config"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// @title        Comisiones API
// @version      1.0
// @description  Ingesta de estados de cuenta de aseguradoras y conciliación de pagos contra transferencias.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in           header
// @name         Authorization
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
	}

	carrierRepo := postgres.NewCarrierRepository(pool)
	batchRepo := postgres.NewImportBatchRepository(pool)
	itemRepo := postgres.NewCommissionItemRepository(pool)
	paymentRepo := postgres.NewPendingPaymentRepository(pool)
	transferRepo := postgres.NewBankTransferRepository(pool)
	groupRepo := postgres.NewPaymentGroupRepository(pool)
	recurrenceRepo := postgres.NewRecurrenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Catálogo de aseguradoras: alias de columnas y alta de aseguradoras conocidas.
	catalog, err := parsers.LoadCatalog(cfg.Ingestion.CarriersFile)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo de aseguradoras")
	}
	for _, e := range catalog.Catalog {
		c := &entity.Carrier{
			ID:                        uuid.New().String(),
			Key:                       e.Key,
			Name:                      e.Name,
			InvertNegatives:           e.InvertNegatives,
			UseMultiCommissionColumns: e.UseMultiCommissionColumns,
			Active:                    true,
		}
		if err := carrierRepo.Upsert(ctx, c); err != nil {
			log.Fatal().Err(err).Str("carrier", e.Key).Msg("registrar aseguradora")
		}
	}

	// OCR de vouchers: sin API key las imágenes se rechazan como formato no soportado.
	var imageLines parsers.LineSource
	if cfg.OCR.APIKey != "" {
		imageLines = ocr.NewVisionService(cfg.OCR.APIKey, cfg.OCR.Endpoint, time.Duration(cfg.OCR.Timeout)*time.Second)
	} else {
		log.Warn().Msg("VISION_API_KEY vacío: carga de imágenes deshabilitada")
	}
	registry := parsers.NewRegistry(catalog.AliasBook, extract.NewPDFText(), imageLines)

	ingestUC := ingestion.NewIngestUseCase(
		carrierRepo, batchRepo, itemRepo,
		ingestion.NewDetector(registry),
		ingestion.NewBatchWriter(txRunner, batchRepo),
		log,
	)
	ledgerUC := payments.NewLedgerUseCase(txRunner, paymentRepo, log)
	groupUC := payments.NewGroupUseCase(txRunner, groupRepo, log)
	transferUC := transfers.NewUseCase(txRunner, transferRepo, log)
	recurrenceUC := recurrence.NewUseCase(txRunner, recurrenceRepo, log)
	exportUC := export.NewUseCase(
		groupRepo,
		infraexport.NewExcelizeSettlement(),
		infraexport.NewMarotoGroupSummary(),
		infraexport.NewZipArchiver(),
		log,
	)

	metrics.Init()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Comisiones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		IngestUC:     ingestUC,
		LedgerUC:     ledgerUC,
		GroupUC:      groupUC,
		TransferUC:   transferUC,
		RecurrenceUC: recurrenceUC,
		ExportUC:     exportUC,
		JWTSecret:    cfg.JWT.Secret,
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
