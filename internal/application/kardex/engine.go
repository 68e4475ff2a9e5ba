package kardex

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// Engine es el motor del kardex: dueño exclusivo del agregado StockState.
// Mantiene el registro de artículos, los balances por código y el historial
// de asientos, y expone cuatro operaciones mutadoras (Receive, Issue,
// Manufacture, Sell) más Undo de un solo nivel.
//
// Un único mutex protege cada operación completa: las mutaciones leen el mapa
// de balances y anexan al ledger de forma no atómica entre sí, así que con
// varios handlers compartiendo la instancia el lock es obligatorio.
type Engine struct {
	mu    sync.Mutex
	state entity.StockState
	snap  *entity.StockState // snapshot previo a la última mutación; nil = sin undo disponible
	ready bool

	store StateStore // opcional; nil = solo en memoria
	log   *logger.Logger
}

// IssueLine es una línea de salida de material.
type IssueLine struct {
	ItemCode string
	Qty      decimal.Decimal
	UOM      string
}

// SellLine es una línea de venta; Rate se arrastra al asiento para reportes
// de ingreso posteriores.
type SellLine struct {
	ItemCode string
	Qty      decimal.Decimal
	UOM      string
	Rate     *decimal.Decimal
}

// NewEngine construye el motor. store puede ser nil (sin persistencia).
func NewEngine(store StateStore, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		state: entity.NewStockState(),
		store: store,
		log:   log,
	}
}

// Initialize fusiona el maestro de artículos con el estado existente y deja el
// motor listo para recibir mutaciones. Nunca falla:
//
//   - Artículos nuevos se agregan al registro preservando el orden y nacen con
//     balance en cero; los balances existentes se conservan, no se reinician.
//   - initialBalances sobreescribe (no suma) qty, uom, last_rate y bodega por
//     clave: la operación es idempotente respecto a balances.
//   - initialLedger se antepone al ledger existente tal cual, sin deduplicar:
//     re-inicializar con el mismo seed duplica asientos (limitación aceptada
//     de la convención de arranque, ver DESIGN.md).
//
// Las mutaciones previas a Initialize devuelven ErrNotReady.
func (e *Engine) Initialize(
	items []entity.Item,
	defaultWarehouse string,
	initialBalances map[string]entity.Balance,
	initialLedger []entity.Entry,
) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.DefaultWarehouse = defaultWarehouse

	known := make(map[string]bool, len(e.state.Items))
	for _, it := range e.state.Items {
		known[it.Code] = true
	}
	for _, it := range items {
		if it.Code == "" || known[it.Code] {
			continue
		}
		known[it.Code] = true
		e.state.Items = append(e.state.Items, it)
		if _, ok := e.state.Balances[it.Code]; !ok {
			wh := it.DefaultWarehouse
			if wh == "" {
				wh = defaultWarehouse
			}
			e.state.Balances[it.Code] = &entity.Balance{
				ItemCode:  it.Code,
				Qty:       decimal.Zero,
				Warehouse: wh,
			}
		}
	}

	for code, b := range initialBalances {
		if code == "" {
			continue
		}
		cur := e.balanceFor(code)
		cur.Qty = b.Qty
		if b.UOM != "" {
			cur.UOM = b.UOM
		}
		if b.Warehouse != "" {
			cur.Warehouse = b.Warehouse
		}
		if b.LastRate != nil {
			rate := *b.LastRate
			cur.LastRate = &rate
		}
	}

	if len(initialLedger) > 0 {
		merged := make([]entity.Entry, 0, len(initialLedger)+len(e.state.Ledger))
		for _, en := range initialLedger {
			merged = append(merged, en.Clone())
		}
		merged = append(merged, e.state.Ledger...)
		e.state.Ledger = merged
	}

	e.ready = true
}

// Ready indica si Initialize ya se ejecutó.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Receive registra una entrada de material: suma qty al balance del artículo,
// actualiza uom y último costo si vienen, y antepone un asiento RECEIVE con el
// proveedor como referencia. Cantidades no positivas o código vacío no mutan
// el estado (no-op silencioso, política de §resiliencia del UI).
func (e *Engine) Receive(date time.Time, itemCode string, qty decimal.Decimal, uom string, rate *decimal.Decimal, supplier string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return domain.ErrNotReady
	}
	if itemCode == "" || !qty.IsPositive() {
		return nil
	}

	e.takeSnapshot()
	b := e.balanceFor(itemCode)
	b.Qty = b.Qty.Add(qty)
	if uom != "" {
		b.UOM = uom
	}
	if rate != nil {
		r := *rate
		b.LastRate = &r
	}
	e.prependEntry(entity.Entry{
		ID:        uuid.New().String(),
		Date:      date,
		Type:      entity.EntryTypeRECEIVE,
		ItemCode:  itemCode,
		Qty:       qty,
		UOM:       b.UOM,
		Rate:      rate,
		Warehouse: b.Warehouse,
		Reference: supplier,
	})
	e.persistLocked()
	return nil
}

// Issue registra salidas de material. Las líneas con qty <= 0 o sin código se
// filtran antes de mutar; si ninguna línea es válida la llamada completa es un
// no-op (no hay rollback parcial porque la validación es un filtro puro).
// Todas las líneas válidas comparten la misma referencia y se aplican como una
// sola transición de estado. Devuelve cuántas líneas se aplicaron.
func (e *Engine) Issue(date time.Time, lines []IssueLine, reference string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return 0, domain.ErrNotReady
	}

	valid := lines[:0:0]
	for _, ln := range lines {
		if ln.ItemCode != "" && ln.Qty.IsPositive() {
			valid = append(valid, ln)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	e.takeSnapshot()
	for _, ln := range valid {
		b := e.balanceFor(ln.ItemCode)
		// Sin guarda de stock: el balance puede cruzar a negativo.
		b.Qty = b.Qty.Sub(ln.Qty)
		if ln.UOM != "" {
			b.UOM = ln.UOM
		}
		e.prependEntry(entity.Entry{
			ID:        uuid.New().String(),
			Date:      date,
			Type:      entity.EntryTypeISSUE,
			ItemCode:  ln.ItemCode,
			Qty:       ln.Qty,
			UOM:       b.UOM,
			Warehouse: b.Warehouse,
			Reference: reference,
		})
	}
	e.persistLocked()
	return len(valid), nil
}

// Manufacture registra producción terminada. Misma forma que Receive pero con
// asiento MANUFACTURE; no modela consumo de materias primas (no hay lista de
// materiales en este núcleo).
func (e *Engine) Manufacture(date time.Time, itemCode string, qty decimal.Decimal, uom string, reference string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return domain.ErrNotReady
	}
	if itemCode == "" || !qty.IsPositive() {
		return nil
	}

	e.takeSnapshot()
	b := e.balanceFor(itemCode)
	b.Qty = b.Qty.Add(qty)
	if uom != "" {
		b.UOM = uom
	}
	e.prependEntry(entity.Entry{
		ID:        uuid.New().String(),
		Date:      date,
		Type:      entity.EntryTypeMANUFACTURE,
		ItemCode:  itemCode,
		Qty:       qty,
		UOM:       b.UOM,
		Warehouse: b.Warehouse,
		Reference: reference,
	})
	e.persistLocked()
	return nil
}

// Sell registra ventas: resta el balance por línea (puede quedar negativo) y
// antepone un asiento SELL por línea válida con el cliente como referencia y
// el rate arrastrado para reportes de ingreso. El motor no exige cliente no
// vacío: esa validación es responsabilidad de la capa que llama (HTTP/UI).
func (e *Engine) Sell(date time.Time, customer string, lines []SellLine) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return 0, domain.ErrNotReady
	}

	valid := lines[:0:0]
	for _, ln := range lines {
		if ln.ItemCode != "" && ln.Qty.IsPositive() {
			valid = append(valid, ln)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	e.takeSnapshot()
	for _, ln := range valid {
		b := e.balanceFor(ln.ItemCode)
		b.Qty = b.Qty.Sub(ln.Qty)
		if ln.UOM != "" {
			b.UOM = ln.UOM
		}
		e.prependEntry(entity.Entry{
			ID:        uuid.New().String(),
			Date:      date,
			Type:      entity.EntryTypeSELL,
			ItemCode:  ln.ItemCode,
			Qty:       ln.Qty,
			UOM:       b.UOM,
			Rate:      cloneRate(ln.Rate),
			Warehouse: b.Warehouse,
			Reference: customer,
		})
	}
	e.persistLocked()
	return len(valid), nil
}

// Undo restaura el estado COMPLETO (artículos, balances, ledger y bodega por
// defecto) al snapshot tomado justo antes de la última mutación. Un solo
// nivel: el snapshot se sobreescribe en cada mutación y se consume al
// deshacer, así que dos Undo seguidos no retroceden dos pasos. Sin snapshot
// disponible es un no-op y devuelve false. Es un rollback de estado, no una
// transacción compensatoria: los asientos deshechos desaparecen del historial.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap == nil {
		return false
	}
	e.state = *e.snap
	e.snap = nil
	e.persistLocked()
	return true
}

// Qty devuelve la cantidad actual del artículo, o cero si no tiene balance.
// Lectura pura, sin efectos.
func (e *Engine) Qty(itemCode string) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.state.Balances[itemCode]; ok {
		return b.Qty
	}
	return decimal.Zero
}

// State devuelve una copia profunda del estado para render de tablas y
// reportes; el llamador no puede mutar el agregado a través de ella.
func (e *Engine) State() entity.StockState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// ── Internos (requieren e.mu tomado) ─────────────────────────────────────────

// balanceFor autovivifica el balance en cero la primera vez que una
// transacción o el seed referencian el código.
func (e *Engine) balanceFor(itemCode string) *entity.Balance {
	if b, ok := e.state.Balances[itemCode]; ok {
		return b
	}
	b := &entity.Balance{
		ItemCode:  itemCode,
		Qty:       decimal.Zero,
		Warehouse: e.state.DefaultWarehouse,
	}
	e.state.Balances[itemCode] = b
	return b
}

func (e *Engine) prependEntry(en entity.Entry) {
	e.state.Ledger = append([]entity.Entry{en}, e.state.Ledger...)
}

// takeSnapshot captura la copia previa a una mutación que sí va a ocurrir
// (los no-op por entrada inválida no pisan el snapshot vigente).
func (e *Engine) takeSnapshot() {
	snap := e.state.Clone()
	e.snap = &snap
}

// persistLocked dispara el guardado best-effort en segundo plano. Nunca
// bloquea ni hace fallar la mutación; los errores se registran y se descartan.
func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	st := PersistedState{
		Balances: make(map[string]entity.Balance, len(e.state.Balances)),
		Ledger:   make([]entity.Entry, len(e.state.Ledger)),
	}
	for code, b := range e.state.Balances {
		st.Balances[code] = b.Clone()
	}
	for i, en := range e.state.Ledger {
		st.Ledger[i] = en.Clone()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.store.Save(ctx, st); err != nil {
			e.log.Warn().Err(err).Msg("guardado del estado del kardex")
		}
	}()
}

func cloneRate(r *decimal.Decimal) *decimal.Decimal {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
