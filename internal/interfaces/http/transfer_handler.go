package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// TransferHandler pool de transferencias bancarias (protegido).
type TransferHandler struct {
	uc *transfers.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfers.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Import godoc
// @Summary      Registrar transferencia bancaria
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ImportTransferRequest  true  "Banco, referencia, monto y fecha"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Import(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ImportTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	date, _ := time.Parse(dto.DateLayout, in.TransferDate)
	t, err := h.uc.ImportTransfer(c.Context(), transfers.ImportInput{
		BankName:        in.BankName,
		ReferenceNumber: in.ReferenceNumber,
		Amount:          in.Amount,
		TransferDate:    date,
		Notes:           in.Notes,
		UserID:          userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t, nil))
}

// List transferencias con sus usos.
// GET /api/transfers?status=&bank_name=
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var q dto.TransferListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	q.DefaultPage()
	if err := validate.Struct(q); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListTransfers(c.Context(), repository.TransferFilter{
		Status: q.Status, BankName: q.BankName, Limit: q.Limit, Offset: q.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toTransferDetailResponse(d))
	}
	return c.JSON(out)
}

// GetByID GET /api/transfers/:id
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	d, err := h.uc.GetTransfer(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferDetailResponse(*d))
}

// Close cierre administrativo de una transferencia OPEN.
// POST /api/transfers/:id/close
func (h *TransferHandler) Close(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	t, err := h.uc.CloseTransfer(c.Context(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t, nil))
}
