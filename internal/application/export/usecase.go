package export

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/internal/observability/metrics"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// Tipos de contenido devueltos por Export.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeZip  = "application/zip"
	ContentTypePDF  = "application/pdf"
)

// UseCase proyección de solo lectura de un grupo posteado hacia archivos de liquidación.
// No modifica el libro: se puede repetir sobre el mismo grupo.
type UseCase struct {
	groupRepo repository.PaymentGroupRepository
	writer    SpreadsheetWriter
	renderer  SummaryRenderer
	archiver  Archiver
	log       *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	groupRepo repository.PaymentGroupRepository,
	writer SpreadsheetWriter,
	renderer SummaryRenderer,
	archiver Archiver,
	log *logger.Logger,
) *UseCase {
	return &UseCase{groupRepo: groupRepo, writer: writer, renderer: renderer, archiver: archiver, log: log.Component("exportacion")}
}

// Download archivo listo para enviar al cliente HTTP.
type Download struct {
	FileName    string
	ContentType string
	Content     []byte
}

// CarrierFiles genera una planilla por aseguradora, nombrada {fecha}_{aseguradora}.xlsx.
func (uc *UseCase) CarrierFiles(ctx context.Context, groupID string) ([]File, error) {
	g, err := uc.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Status != entity.GroupStatusPosted {
		return nil, &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusPosted}
	}
	sheets, err := uc.sheets(ctx, g)
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(sheets))
	for _, s := range sheets {
		content, err := uc.writer.WriteSettlement(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("planilla %s: %w", s.CarrierName, err)
		}
		files = append(files, File{Name: SettlementFileName(s.SettlementDate, s.CarrierName), Content: content})
	}
	return files, nil
}

// Export devuelve la planilla directa si el grupo tiene una sola aseguradora o un zip con todas.
func (uc *UseCase) Export(ctx context.Context, groupID string) (*Download, error) {
	files, err := uc.CarrierFiles(ctx, groupID)
	if err != nil {
		metrics.IncExport("xlsx", err)
		return nil, err
	}
	if len(files) == 1 {
		metrics.IncExport("xlsx", nil)
		return &Download{FileName: files[0].Name, ContentType: ContentTypeXLSX, Content: files[0].Content}, nil
	}
	content, err := uc.archiver.Archive(files)
	metrics.IncExport("zip", err)
	if err != nil {
		return nil, fmt.Errorf("empaquetar planillas: %w", err)
	}
	name := fmt.Sprintf("liquidacion_%s.zip", shortID(groupID))
	uc.log.Info().Str("group_id", groupID).Int("files", len(files)).Msg("liquidación exportada")
	return &Download{FileName: name, ContentType: ContentTypeZip, Content: content}, nil
}

// Summary PDF con totales por aseguradora y referencias bancarias. Requiere CONFIRMED o POSTED.
func (uc *UseCase) Summary(ctx context.Context, groupID string) (*Download, error) {
	g, err := uc.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Status != entity.GroupStatusConfirmed && g.Status != entity.GroupStatusPosted {
		return nil, &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusConfirmed}
	}
	sheets, err := uc.sheets(ctx, g)
	if err != nil {
		return nil, err
	}
	refs, err := uc.groupRepo.ListReferences(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	content, err := uc.renderer.RenderGroupSummary(ctx, GroupSummary{Group: g, Sheets: sheets, References: refs})
	metrics.IncExport("pdf", err)
	if err != nil {
		return nil, fmt.Errorf("resumen pdf: %w", err)
	}
	return &Download{
		FileName:    fmt.Sprintf("resumen_grupo_%s.pdf", shortID(g.ID)),
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

func (uc *UseCase) loadGroup(ctx context.Context, groupID string) (*entity.PaymentGroup, error) {
	g, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// sheets agrupa las líneas por aseguradora, ordenadas por nombre de aseguradora y de cliente.
func (uc *UseCase) sheets(ctx context.Context, g *entity.PaymentGroup) ([]CarrierSheet, error) {
	lines, err := uc.groupRepo.SettlementLines(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	date := g.UpdatedAt
	switch {
	case g.PostedAt != nil:
		date = *g.PostedAt
	case g.ConfirmedAt != nil:
		date = *g.ConfirmedAt
	}

	byCarrier := make(map[string]*CarrierSheet)
	order := make([]string, 0)
	for _, l := range lines {
		s, ok := byCarrier[l.CarrierID]
		if !ok {
			s = &CarrierSheet{CarrierID: l.CarrierID, CarrierName: l.CarrierName, SettlementDate: date, Total: decimal.Zero}
			byCarrier[l.CarrierID] = s
			order = append(order, l.CarrierID)
		}
		s.Lines = append(s.Lines, l)
		s.Total = s.Total.Add(l.AmountApplied)
	}
	out := make([]CarrierSheet, 0, len(order))
	for _, id := range order {
		s := byCarrier[id]
		sort.SliceStable(s.Lines, func(i, j int) bool { return s.Lines[i].ClientName < s.Lines[j].ClientName })
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CarrierName < out[j].CarrierName })
	return out, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SettlementFileName {YYYY-MM-DD}_{aseguradora}.xlsx con el nombre reducido a caracteres seguros.
func SettlementFileName(date time.Time, carrierName string) string {
	name := commission.FoldAccents(strings.TrimSpace(carrierName))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "aseguradora"
	}
	return date.Format(time.DateOnly) + "_" + name + ".xlsx"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
