package entity

// StockState es la raíz de agregación del kardex: registro de artículos (el
// orden de inserción se preserva para un listado determinista), mapa de
// balances por código, historial de asientos (almacenado del más reciente al
// más antiguo) y bodega por defecto. El motor (application/kardex) es el único
// componente que muta este agregado.
type StockState struct {
	Items            []Item              `json:"items"`
	Balances         map[string]*Balance `json:"balances"`
	Ledger           []Entry             `json:"ledger"`
	DefaultWarehouse string              `json:"default_warehouse"`
}

// NewStockState devuelve un estado vacío listo para usar.
func NewStockState() StockState {
	return StockState{
		Items:    []Item{},
		Balances: map[string]*Balance{},
		Ledger:   []Entry{},
	}
}

// Clone devuelve una copia profunda del estado completo. Es la base del
// mecanismo de snapshot para Undo de un solo nivel.
func (s StockState) Clone() StockState {
	c := StockState{
		Items:            make([]Item, len(s.Items)),
		Balances:         make(map[string]*Balance, len(s.Balances)),
		Ledger:           make([]Entry, len(s.Ledger)),
		DefaultWarehouse: s.DefaultWarehouse,
	}
	copy(c.Items, s.Items)
	for code, b := range s.Balances {
		clone := b.Clone()
		c.Balances[code] = &clone
	}
	for i, e := range s.Ledger {
		c.Ledger[i] = e.Clone()
	}
	return c
}
