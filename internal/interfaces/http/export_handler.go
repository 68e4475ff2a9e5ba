package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ReportGenerator produce un documento descargable a partir del estado del
// kardex. Implementado por infrastructure/pdf con Maroto.
type ReportGenerator interface {
	GenerateBalancesPDF(state entity.StockState) ([]byte, error)
	GenerateLedgerPDF(state entity.StockState) ([]byte, error)
}

// ExportHandler expone la exportación del kardex a PDF.
type ExportHandler struct {
	engine *kardex.Engine
	gen    ReportGenerator
}

// NewExportHandler construye el handler.
func NewExportHandler(engine *kardex.Engine, gen ReportGenerator) *ExportHandler {
	return &ExportHandler{engine: engine, gen: gen}
}

// ExportBalances godoc
// @Summary      Exportar la foto de balances a PDF
// @Tags         export
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/kardex/export/balances.pdf [get]
func (h *ExportHandler) ExportBalances(c *fiber.Ctx) error {
	doc, err := h.gen.GenerateBalancesPDF(h.engine.State())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF", Message: err.Error()})
	}
	return sendPDF(c, "kardex-balances.pdf", doc)
}

// ExportLedger godoc
// @Summary      Exportar el historial de movimientos a PDF
// @Tags         export
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/kardex/export/ledger.pdf [get]
func (h *ExportHandler) ExportLedger(c *fiber.Ctx) error {
	doc, err := h.gen.GenerateLedgerPDF(h.engine.State())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF", Message: err.Error()})
	}
	return sendPDF(c, "kardex-movimientos.pdf", doc)
}

func sendPDF(c *fiber.Ctx, filename string, doc []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
