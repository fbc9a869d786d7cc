package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// GroupHandler ciclo de vida de grupos de pago y exportación de liquidaciones (protegido).
type GroupHandler struct {
	uc       *payments.GroupUseCase
	exporter *export.UseCase
}

// NewGroupHandler construye el handler.
func NewGroupHandler(uc *payments.GroupUseCase, exporter *export.UseCase) *GroupHandler {
	return &GroupHandler{uc: uc, exporter: exporter}
}

// Create reserva un grupo en DRAFT.
// POST /api/groups
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateGroupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	g, err := h.uc.CreateGroup(c.Context(), userID, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toGroupResponse(g))
}

// Confirm godoc
// @Summary      Confirmar grupo de pagos
// @Description  Bloquea pagos y transferencias, verifica que las referencias cubran al menos los montos aplicados y descuenta de cada transferencia lo referenciado; el excedente queda como saldo. Todo o nada.
// @Tags         groups
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Grupo (UUID)"
// @Param        body  body      dto.ConfirmGroupRequest  true  "Ítems y referencias"
// @Success      200   {object}  dto.GroupResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/groups/{id}/confirm [post]
func (h *GroupHandler) Confirm(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in dto.ConfirmGroupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	input := payments.ConfirmGroupInput{GroupID: id, UserID: userID}
	for _, it := range in.Items {
		input.Items = append(input.Items, payments.ConfirmItem{
			PendingPaymentID: it.PendingPaymentID,
			CarrierID:        it.CarrierID,
			AmountApplied:    it.AmountApplied,
		})
	}
	for _, r := range in.References {
		input.References = append(input.References, payments.ConfirmReference{
			BankTransferID: r.BankTransferID,
			AmountUsed:     r.AmountUsed,
		})
	}
	g, err := h.uc.ConfirmGroup(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toGroupResponse(g))
}

// Post marca el grupo y sus pagos como pagados.
// POST /api/groups/:id/post
func (h *GroupHandler) Post(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	g, err := h.uc.PostGroup(c.Context(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toGroupResponse(g))
}

// Release devuelve un grupo CONFIRMED a DRAFT y restituye saldos.
// POST /api/groups/:id/release
func (h *GroupHandler) Release(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in dto.ReleaseGroupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	g, err := h.uc.ReleaseGroup(c.Context(), id, userID, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toGroupResponse(g))
}

// Discard descarta un grupo DRAFT.
// DELETE /api/groups/:id
func (h *GroupHandler) Discard(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.uc.DiscardGroup(c.Context(), id, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// GetByID grupo con ítems y referencias.
// GET /api/groups/:id
func (h *GroupHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	d, err := h.uc.GetGroup(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toGroupDetailResponse(d))
}

// List grupos por estado.
// GET /api/groups?status=
func (h *GroupHandler) List(c *fiber.Ctx) error {
	var q dto.GroupListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	q.DefaultPage()
	if err := validate.Struct(q); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListGroups(c.Context(), repository.GroupFilter{Status: q.Status, Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.GroupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toGroupResponse(g))
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar liquidación por aseguradora
// @Description  Una planilla xlsx si el grupo tiene una sola aseguradora; un zip con una planilla por aseguradora si tiene varias.
// @Tags         groups
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/zip
// @Param        id   path  string  true  "Grupo (UUID)"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/groups/{id}/export [get]
func (h *GroupHandler) Export(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	d, err := h.exporter.Export(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, d)
}

// Summary PDF con totales por aseguradora y referencias.
// GET /api/groups/:id/summary.pdf
func (h *GroupHandler) Summary(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	d, err := h.exporter.Summary(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, d)
}

func sendDownload(c *fiber.Ctx, d *export.Download) error {
	c.Set(fiber.HeaderContentType, d.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", d.FileName))
	return c.Send(d.Content)
}
