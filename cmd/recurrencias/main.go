package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Comisiones-api/pkg/config"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// Proceso programado que genera las cuotas de las recurrencias vencidas.
// Con -once ejecuta una sola pasada y termina.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	}).Component("recurrencias")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := recurrence.NewUseCase(postgres.NewTxRunner(pool), postgres.NewRecurrenceRepository(pool), log)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Scheduler.Timezone).Msg("zona horaria")
	}

	run := func() {
		started := time.Now()
		report, err := uc.MaterializeDue(ctx, time.Now().In(loc))
		if err != nil {
			log.Error().Err(err).Msg("pasada de recurrencias interrumpida")
			return
		}
		log.Info().
			Int("created", report.Created).
			Int("skipped", report.Skipped).
			Int("completed", report.Completed).
			Int("failed", report.Failed).
			Dur("elapsed", time.Since(started)).
			Msg("pasada de recurrencias finalizada")
	}

	if len(os.Args) > 1 && os.Args[1] == "-once" {
		run()
		return
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Scheduler.Cron, run); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Scheduler.Cron).Msg("expresión cron inválida")
	}
	c.Start()
	log.Info().Str("cron", cfg.Scheduler.Cron).Str("tz", loc.String()).Msg("programador de recurrencias iniciado")

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, esperando la pasada en curso...")
	<-c.Stop().Done()
	log.Info().Msg("programador detenido")
}
