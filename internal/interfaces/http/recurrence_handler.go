package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
)

// RecurrenceHandler cronogramas de cuotas recurrentes (protegido).
type RecurrenceHandler struct {
	uc *recurrence.UseCase
}

// NewRecurrenceHandler construye el handler.
func NewRecurrenceHandler(uc *recurrence.UseCase) *RecurrenceHandler {
	return &RecurrenceHandler{uc: uc}
}

// Create godoc
// @Summary      Crear recurrencia
// @Description  Arma el cronograma completo. 2 cuotas = SEMESTRAL, 1 y 3 a 12 = MENSUAL, dentro de un año.
//
//	Si ya hay una recurrencia ACTIVA para la póliza y aseguradora devuelve esa con 200.
//
// @Tags         recurrences
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateRecurrenceRequest  true  "Póliza, aseguradora, cuotas, monto e inicio"
// @Success      201   {object}  dto.RecurrenceResponse
// @Success      200   {object}  dto.RecurrenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/recurrences [post]
func (h *RecurrenceHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateRecurrenceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	start, _ := time.Parse(dto.DateLayout, in.StartDate)
	r, created, err := h.uc.Create(c.Context(), recurrence.CreateInput{
		ClientName:        in.ClientName,
		PolicyNumber:      in.PolicyNumber,
		CarrierID:         in.CarrierID,
		TotalInstallments: in.TotalInstallments,
		InstallmentAmount: in.InstallmentAmount,
		StartDate:         start,
		UserID:            userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := toRecurrenceResponse(r)
	out.Created = &created
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// UpdateNextDate PUT /api/recurrences/:id/next-date
func (h *RecurrenceHandler) UpdateNextDate(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in dto.UpdateRecurrenceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	date, _ := time.Parse(dto.DateLayout, in.NewDate)
	r, err := h.uc.EditNextDate(c.Context(), recurrence.UpdateInput{
		RecurrenceID: id,
		NewDate:      date,
		ApplyTo:      in.ApplyTo,
		UserID:       userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecurrenceResponse(r))
}

// Cancel POST /api/recurrences/:id/cancel
func (h *RecurrenceHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in dto.CancelRecurrenceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	r, err := h.uc.Cancel(c.Context(), id, in.Reason, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecurrenceResponse(r))
}

// GetByID GET /api/recurrences/:id
func (h *RecurrenceHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	r, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecurrenceResponse(r))
}

// List GET /api/recurrences?status=
func (h *RecurrenceHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context(), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.RecurrenceResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRecurrenceResponse(r))
	}
	return c.JSON(out)
}

// Materialize ejecuta a demanda la generación de cuotas vencidas.
// POST /api/recurrences/materialize?date=YYYY-MM-DD
func (h *RecurrenceHandler) Materialize(c *fiber.Ctx) error {
	today := time.Now()
	if s := c.Query("date"); s != "" {
		d, err := time.Parse(dto.DateLayout, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date: formato YYYY-MM-DD"})
		}
		today = d
	}
	rep, err := h.uc.MaterializeDue(c.Context(), today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterializeResponse{
		Created:   rep.Created,
		Skipped:   rep.Skipped,
		Completed: rep.Completed,
		Failed:    rep.Failed,
	})
}
