package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del kardex.
const (
	EntryTypeRECEIVE     = "RECEIVE"     // entrada de material
	EntryTypeISSUE       = "ISSUE"       // salida de material
	EntryTypeMANUFACTURE = "MANUFACTURE" // producción terminada
	EntryTypeSELL        = "SELL"        // venta
	EntryTypeINIT        = "INIT"        // asiento sintético derivado del seed
)

// Entry representa un movimiento inmutable del kardex. Qty se almacena siempre
// como magnitud positiva; el signo del efecto neto se deriva del tipo con
// Sign(). Los asientos nunca se mutan ni se borran individualmente: el único
// camino de "remoción" es el rollback completo del estado vía Undo.
type Entry struct {
	ID        string           `json:"id"`
	Date      time.Time        `json:"date"` // fecha de negocio, no de creación
	Type      string           `json:"type"`
	ItemCode  string           `json:"item_code"`
	Qty       decimal.Decimal  `json:"qty"`
	UOM       string           `json:"uom"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Warehouse string           `json:"warehouse"`
	Reference string           `json:"reference"` // proveedor, cliente o documento
}

// Sign devuelve el signo del efecto del asiento sobre el balance: +1 para
// entradas (RECEIVE, MANUFACTURE), -1 para salidas (ISSUE, SELL) y para los
// asientos INIT, que modelan compromisos de apertura que ya consumieron stock.
func (e Entry) Sign() int {
	switch e.Type {
	case EntryTypeRECEIVE, EntryTypeMANUFACTURE:
		return 1
	case EntryTypeISSUE, EntryTypeSELL, EntryTypeINIT:
		return -1
	}
	return 0
}

// SignedQty devuelve la cantidad con el signo del efecto neto.
func (e Entry) SignedQty() decimal.Decimal {
	if e.Sign() < 0 {
		return e.Qty.Neg()
	}
	if e.Sign() == 0 {
		return decimal.Zero
	}
	return e.Qty
}

// Clone devuelve una copia independiente del asiento.
func (e Entry) Clone() Entry {
	c := e
	if e.Rate != nil {
		rate := *e.Rate
		c.Rate = &rate
	}
	return c
}
