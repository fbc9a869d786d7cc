package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IngestUC     *ingestion.IngestUseCase
	LedgerUC     *payments.LedgerUseCase
	GroupUC      *payments.GroupUseCase
	TransferUC   *transfers.UseCase
	RecurrenceUC *recurrence.UseCase
	ExportUC     *export.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las que mueven
// dinero o estado del libro requieren además el rol master.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	master := RequireRole(jwt.RoleMaster)
	anyRole := RequireRole(jwt.RoleMaster, jwt.RoleBroker)

	// Imports
	imports := api.Group("/imports")
	importHandler := NewImportHandler(deps.IngestUC)
	imports.Post("/", master, importHandler.Upload)
	imports.Get("/", anyRole, importHandler.List)
	imports.Get("/:id", anyRole, importHandler.GetByID)

	// Payments
	pays := api.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.LedgerUC)
	pays.Post("/", master, paymentHandler.Create)
	pays.Get("/", anyRole, paymentHandler.List)
	pays.Get("/:id", anyRole, paymentHandler.GetByID)
	pays.Post("/:id/refund", master, paymentHandler.MarkRefund)
	pays.Post("/:id/confirm", master, paymentHandler.ConfirmRecurring)

	// Groups + export
	groups := api.Group("/groups")
	groupHandler := NewGroupHandler(deps.GroupUC, deps.ExportUC)
	groups.Post("/", master, groupHandler.Create)
	groups.Get("/", anyRole, groupHandler.List)
	groups.Get("/:id", anyRole, groupHandler.GetByID)
	groups.Delete("/:id", master, groupHandler.Discard)
	groups.Post("/:id/confirm", master, groupHandler.Confirm)
	groups.Post("/:id/post", master, groupHandler.Post)
	groups.Post("/:id/release", master, groupHandler.Release)
	groups.Get("/:id/export", anyRole, groupHandler.Export)
	groups.Get("/:id/summary.pdf", anyRole, groupHandler.Summary)

	// Transfers
	trs := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	trs.Post("/", master, transferHandler.Import)
	trs.Get("/", anyRole, transferHandler.List)
	trs.Get("/:id", anyRole, transferHandler.GetByID)
	trs.Post("/:id/close", master, transferHandler.Close)

	// Recurrences
	recs := api.Group("/recurrences")
	recurrenceHandler := NewRecurrenceHandler(deps.RecurrenceUC)
	recs.Post("/", master, recurrenceHandler.Create)
	recs.Get("/", anyRole, recurrenceHandler.List)
	recs.Post("/materialize", master, recurrenceHandler.Materialize)
	recs.Get("/:id", anyRole, recurrenceHandler.GetByID)
	recs.Put("/:id/next-date", master, recurrenceHandler.UpdateNextDate)
	recs.Post("/:id/cancel", master, recurrenceHandler.Cancel)
}
