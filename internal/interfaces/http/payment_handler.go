package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// PaymentHandler libro de pagos pendientes y devoluciones (protegido).
type PaymentHandler struct {
	uc *payments.LedgerUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payments.LedgerUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar pago pendiente
// @Description  Idempotente por póliza, aseguradora, fecha y cuota: si ya existe devuelve el mismo pago con 200.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePendingRequest  true  "Pago o devolución"
// @Success      201   {object}  dto.CreatePendingResponse
// @Success      200   {object}  dto.CreatePendingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePendingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	date, _ := time.Parse(dto.DateLayout, in.PaymentDate)

	p, created, err := h.uc.CreatePending(c.Context(), payments.CreatePendingInput{
		ClientName:     in.ClientName,
		PolicyNumber:   in.PolicyNumber,
		CarrierID:      in.CarrierID,
		Amount:         in.Amount,
		PaymentDate:    date,
		Type:           in.Type,
		InstallmentNum: in.InstallmentNum,
		Notes:          in.Notes,
		UserID:         userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.CreatePendingResponse{PaymentResponse: toPaymentResponse(p), Created: created})
}

// List godoc
// @Summary      Listar pagos pendientes
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "PENDIENTE_CONFIRMACION | PENDIENTE | AGRUPADO | PAGADO"
// @Param        carrier_id  query  string  false  "Aseguradora"
// @Param        refund      query  string  false  "true | false"
// @Param        search      query  string  false  "Cliente o póliza"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.PaymentListResponse
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	var q dto.PaymentListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	q.DefaultPage()
	if err := validate.Struct(q); err != nil {
		return writeError(c, err)
	}
	from, _ := parseDatePtr(q.From)
	to, _ := parseDatePtr(q.To)
	f := repository.PaymentFilter{
		Status:    q.Status,
		CarrierID: q.CarrierID,
		Search:    q.Search,
		From:      from,
		To:        to,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Refund != "" {
		refund := q.Refund == "true"
		f.Refund = &refund
	}

	list, summary, err := h.uc.ListPending(c.Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.PaymentListResponse{
		Items:   make([]dto.PaymentResponse, 0, len(list)),
		Summary: summary,
		Page:    dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}
	for _, p := range list {
		out.Items = append(out.Items, toPaymentResponse(p))
	}
	return c.JSON(out)
}

// GetByID detalle de un pago.
// GET /api/payments/:id
func (h *PaymentHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	p, err := h.uc.GetPayment(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPaymentResponse(p))
}

// MarkRefund anota los datos bancarios de una devolución (una sola vez).
// POST /api/payments/:id/refund
func (h *PaymentHandler) MarkRefund(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in dto.MarkRefundRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	err := h.uc.MarkRefund(c.Context(), payments.MarkRefundInput{
		PaymentID:   id,
		Bank:        in.Bank,
		Account:     in.Account,
		AccountType: in.AccountType,
		Reason:      in.Reason,
		UserID:      userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// ConfirmRecurring pasa una cuota generada por el cron a PENDIENTE.
// POST /api/payments/:id/confirm
func (h *PaymentHandler) ConfirmRecurring(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.uc.ConfirmRecurringPayment(c.Context(), id, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
