package kardex

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// MergeStartupState combina el resultado del seed con lo persistido de la
// sesión anterior para la llamada única a Initialize del arranque:
//
//   - Balances: los persistidos mandan por código (last-write-wins por clave);
//     los códigos que solo aparecen en el seed conservan su apertura.
//   - Ledger: los asientos persistidos van primero (se consideran más
//     recientes que la foto estática del seed) y los del seed después.
//
// persisted puede ser nil (primera sesión o almacén ilegible): el resultado es
// el seed tal cual.
func MergeStartupState(
	persisted *PersistedState,
	seedBalances map[string]entity.Balance,
	seedLedger []entity.Entry,
) (map[string]entity.Balance, []entity.Entry) {
	balances := make(map[string]entity.Balance, len(seedBalances))
	for code, b := range seedBalances {
		balances[code] = b.Clone()
	}

	ledger := make([]entity.Entry, 0, len(seedLedger))
	if persisted != nil {
		for code, b := range persisted.Balances {
			balances[code] = b.Clone()
		}
		for _, en := range persisted.Ledger {
			ledger = append(ledger, en.Clone())
		}
	}
	for _, en := range seedLedger {
		ledger = append(ledger, en.Clone())
	}
	return balances, ledger
}
