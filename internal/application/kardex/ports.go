package kardex

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// PersistedState es el contrato con el almacén durable: solo balances y
// ledger. Los artículos y la bodega por defecto no se persisten porque se
// re-derivan siempre del seed en el arranque.
type PersistedState struct {
	Balances map[string]entity.Balance `json:"balances"`
	Ledger   []entity.Entry            `json:"ledger"`
}

// StateStore guarda y restaura el estado del kardex bajo una clave fija.
// Save es best-effort: el motor descarta el error (el almacén es un caché de
// conveniencia, no un libro de registro). Load devuelve (nil, nil) cuando no
// hay datos previos o no se pueden interpretar.
type StateStore interface {
	Save(ctx context.Context, st PersistedState) error
	Load(ctx context.Context) (*PersistedState, error)
}
