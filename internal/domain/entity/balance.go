package entity

import "github.com/shopspring/decimal"

// Balance representa la existencia actual de un artículo. Se crea de forma
// perezosa la primera vez que una transacción o el seed referencian el código
// (no hay integridad referencial contra el maestro: un asiento puede
// referenciar un artículo fuera del registro y el balance nace en cero).
//
// Invariante: Qty es igual a la suma con signo de todos los asientos del
// ledger para ItemCode (RECEIVE/MANUFACTURE suman, ISSUE/SELL/INIT restan).
// La cantidad puede ser negativa: el motor no bloquea sobre-salidas.
type Balance struct {
	ItemCode  string           `json:"item_code"`
	Qty       decimal.Decimal  `json:"qty"`
	UOM       string           `json:"uom"`       // última escritura gana
	Warehouse string           `json:"warehouse"` // última bodega conocida
	LastRate  *decimal.Decimal `json:"last_rate,omitempty"`
}

// Clone devuelve una copia independiente del balance.
func (b Balance) Clone() Balance {
	c := b
	if b.LastRate != nil {
		rate := *b.LastRate
		c.LastRate = &rate
	}
	return c
}
