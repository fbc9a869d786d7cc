package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// ImportHandler carga de estados de comisiones (protegido).
type ImportHandler struct {
	uc *ingestion.IngestUseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *ingestion.IngestUseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Upload godoc
// @Summary      Cargar estado de comisiones
// @Description  Detecta el formato, aplica la estrategia de la aseguradora, filtra filas no válidas
//
//	y confirma el lote completo o nada.
//
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file              formData  file    true   "xlsx, xls, csv, pdf o imagen"
// @Param        carrier_id        formData  string  true   "Aseguradora (UUID)"
// @Param        period_id         formData  string  true   "Período de comisiones"
// @Param        total_amount      formData  string  false  "Total declarado"
// @Param        invert_negatives  formData  bool    false  "Invertir signos"
// @Param        sum_multi_column  formData  bool    false  "Sumar columnas de comisión secundarias"
// @Success      201  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/imports [post]
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ImportFormRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	declared := decimal.Zero
	if s := strings.TrimSpace(in.DeclaredTotal); s != "" {
		d, ok := commission.ParseAmount(s)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "total_amount inválido"})
		}
		declared = d
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivo requerido en el campo file"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.uc.Ingest(c.Context(), ingestion.IngestInput{
		CarrierID:     in.CarrierID,
		PeriodID:      in.PeriodID,
		DeclaredTotal: declared,
		UserID:        userID,
		File:          ingestion.File{Name: fh.Filename, Content: content},
		Options:       commission.Options{InvertNegatives: in.InvertNegatives, SumMultiColumn: in.SumMultiColumn},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toImportResponse(res))
}

// List lotes confirmados, opcionalmente por aseguradora.
// GET /api/imports?carrier_id=&limit=&offset=
func (h *ImportHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return writeError(c, err)
	}
	carrierID := c.Query("carrier_id")
	if err := validate.Var(carrierID, "omitempty,uuid"); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListBatches(c.Context(), carrierID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBatchResponse(b, nil))
	}
	return c.JSON(out)
}

// GetByID cabecera del lote con sus líneas.
// GET /api/imports/:id
func (h *ImportHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	batch, items, err := h.uc.GetBatch(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(batch, items))
}
