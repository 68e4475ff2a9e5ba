package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// KardexHandler maneja las peticiones HTTP del motor de kardex.
//
// División de validación: el motor descarta en silencio líneas inválidas y
// trata cantidades no positivas como no-op; esta capa valida de cara al UI
// (cliente vacío en venta, fecha malformada, cantidad no positiva) y devuelve
// 400 para que el llamador tenga retroalimentación.
type KardexHandler struct {
	engine *kardex.Engine
}

// NewKardexHandler construye el handler.
func NewKardexHandler(engine *kardex.Engine) *KardexHandler {
	return &KardexHandler{engine: engine}
}

// Receive godoc
// @Summary      Registrar entrada de material
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "date, item_code, qty, uom, rate, supplier"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/kardex/receive [post]
func (h *KardexHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ItemCode == "" || !in.Qty.IsPositive() {
		return badRequest(c, "VALIDATION", "item_code y qty positiva son obligatorios")
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return badRequest(c, "VALIDATION", "fecha inválida, formato esperado 2006-01-02")
	}
	if err := h.engine.Receive(date, in.ItemCode, in.Qty, in.UOM, in.Rate, in.Supplier); err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "entrada registrada", Applied: 1})
}

// Issue godoc
// @Summary      Registrar salida de material (multi-línea)
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "date, reference, lines[{item_code, qty, uom}]"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/kardex/issue [post]
func (h *KardexHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return badRequest(c, "VALIDATION", "fecha inválida, formato esperado 2006-01-02")
	}
	lines := make([]kardex.IssueLine, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, kardex.IssueLine{ItemCode: ln.ItemCode, Qty: ln.Qty, UOM: ln.UOM})
	}
	applied, err := h.engine.Issue(date, lines, in.Reference)
	if err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "salida registrada", Applied: applied})
}

// Manufacture godoc
// @Summary      Registrar producción terminada
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManufactureRequest  true  "date, item_code, qty, uom, reference"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/kardex/manufacture [post]
func (h *KardexHandler) Manufacture(c *fiber.Ctx) error {
	var in dto.ManufactureRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ItemCode == "" || !in.Qty.IsPositive() {
		return badRequest(c, "VALIDATION", "item_code y qty positiva son obligatorios")
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return badRequest(c, "VALIDATION", "fecha inválida, formato esperado 2006-01-02")
	}
	if err := h.engine.Manufacture(date, in.ItemCode, in.Qty, in.UOM, in.Reference); err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "producción registrada", Applied: 1})
}

// Sell godoc
// @Summary      Registrar venta (multi-línea)
// @Description  Requiere customer no vacío: el motor no lo exige, la
//	validación de cliente es contrato de esta capa.
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SellRequest  true  "date, customer, lines[{item_code, qty, uom, rate}]"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/kardex/sell [post]
func (h *KardexHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Customer == "" {
		return badRequest(c, "VALIDATION", "customer es obligatorio")
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return badRequest(c, "VALIDATION", "fecha inválida, formato esperado 2006-01-02")
	}
	lines := make([]kardex.SellLine, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, kardex.SellLine{ItemCode: ln.ItemCode, Qty: ln.Qty, UOM: ln.UOM, Rate: ln.Rate})
	}
	applied, err := h.engine.Sell(date, in.Customer, lines)
	if err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "venta registrada", Applied: applied})
}

// Undo godoc
// @Summary      Deshacer la última mutación (un solo nivel)
// @Tags         kardex
// @Produce      json
// @Success      200  {object}  dto.UndoResponse
// @Router       /api/kardex/undo [post]
func (h *KardexHandler) Undo(c *fiber.Ctx) error {
	if h.engine.Undo() {
		return c.JSON(dto.UndoResponse{Restored: true, Message: "estado restaurado"})
	}
	return c.JSON(dto.UndoResponse{Restored: false, Message: "nada que deshacer"})
}

// GetState godoc
// @Summary      Estado completo del kardex (para tablas y reportes)
// @Tags         kardex
// @Produce      json
// @Success      200  {object}  entity.StockState
// @Router       /api/kardex/state [get]
func (h *KardexHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.engine.State())
}

// GetItems godoc
// @Summary      Maestro de artículos
// @Tags         kardex
// @Produce      json
// @Router       /api/kardex/items [get]
func (h *KardexHandler) GetItems(c *fiber.Ctx) error {
	state := h.engine.State()
	return c.JSON(fiber.Map{"total": len(state.Items), "items": state.Items})
}

// GetBalances godoc
// @Summary      Balances actuales por código de artículo
// @Tags         kardex
// @Produce      json
// @Router       /api/kardex/balances [get]
func (h *KardexHandler) GetBalances(c *fiber.Ctx) error {
	state := h.engine.State()
	return c.JSON(fiber.Map{"total": len(state.Balances), "balances": state.Balances})
}

// GetLedger godoc
// @Summary      Historial de movimientos, del más reciente al más antiguo
// @Tags         kardex
// @Produce      json
// @Param        limit  query  int  false  "Máximo de asientos a devolver (0 = todos)"
// @Router       /api/kardex/ledger [get]
func (h *KardexHandler) GetLedger(c *fiber.Ctx) error {
	state := h.engine.State()
	ledger := state.Ledger
	if limit, err := strconv.Atoi(c.Query("limit", "0")); err == nil && limit > 0 && limit < len(ledger) {
		ledger = ledger[:limit]
	}
	return c.JSON(fiber.Map{"total": len(state.Ledger), "ledger": ledger})
}

// GetQty godoc
// @Summary      Cantidad actual de un artículo (cero si no tiene balance)
// @Tags         kardex
// @Produce      json
// @Param        itemCode  path  string  true  "Código del artículo"
// @Success      200  {object}  dto.QtyResponse
// @Router       /api/kardex/qty/{itemCode} [get]
func (h *KardexHandler) GetQty(c *fiber.Ctx) error {
	code := c.Params("itemCode")
	return c.JSON(dto.QtyResponse{ItemCode: code, Qty: h.engine.Qty(code)})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func engineError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotReady) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "NOT_READY", Message: "el kardex aún no está inicializado",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// parseDate interpreta la fecha de negocio del request. Vacía = hoy;
// malformada = inválida (el UI debe corregirla, no se adivina).
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Now(), true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
