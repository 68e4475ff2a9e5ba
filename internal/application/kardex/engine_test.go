package kardex_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	fecha1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fecha2 = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
)

func qty(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// newReadyEngine construye un motor inicializado con el maestro indicado y
// bodega por defecto "WH1", sin persistencia.
func newReadyEngine(t *testing.T, items ...entity.Item) *kardex.Engine {
	t.Helper()
	e := kardex.NewEngine(nil, nil)
	e.Initialize(items, "WH1", nil, nil)
	return e
}

// signedSum calcula la suma con signo de los asientos del ledger para un
// código (RECEIVE/MANUFACTURE suman, ISSUE/SELL/INIT restan).
func signedSum(state entity.StockState, itemCode string) decimal.Decimal {
	sum := decimal.Zero
	for _, en := range state.Ledger {
		if en.ItemCode == itemCode {
			sum = sum.Add(en.SignedQty())
		}
	}
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Inicialización y estado "not ready"
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_MutacionAntesDeInitialize_ErrNotReady(t *testing.T) {
	e := kardex.NewEngine(nil, nil)

	err := e.Receive(fecha1, "RM-FLOUR", qty("10"), "Kg", nil, "")
	assert.ErrorIs(t, err, domain.ErrNotReady, "Receive antes de Initialize debe rechazar la mutación")

	_, err = e.Issue(fecha1, []kardex.IssueLine{{ItemCode: "RM-FLOUR", Qty: qty("1")}}, "")
	assert.ErrorIs(t, err, domain.ErrNotReady)

	assert.False(t, e.Ready())
	assert.True(t, e.Qty("RM-FLOUR").IsZero(), "sin inicializar, cualquier consulta devuelve cero")
}

func TestEngine_InitializeVacio_NoFalla(t *testing.T) {
	e := kardex.NewEngine(nil, nil)
	e.Initialize(nil, "WH1", nil, nil)

	state := e.State()
	assert.Empty(t, state.Items, "seed vacío debe dejar registro de artículos vacío")
	assert.Empty(t, state.Ledger)
	assert.True(t, e.Qty("CUALQUIERA").IsZero())
	assert.True(t, e.Ready())
}

func TestEngine_Initialize_PreservaBalancesExistentes(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "RM-A", DefaultWarehouse: "WH1", Kind: entity.ItemKindRaw})
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("50"), "Kg", nil, "Proveedor"))

	// Re-inicializar con el mismo maestro: el balance no se reinicia.
	e.Initialize([]entity.Item{{Code: "RM-A", DefaultWarehouse: "WH1"}}, "WH1", nil, nil)
	assert.True(t, e.Qty("RM-A").Equal(qty("50")), "re-Initialize no debe resetear balances existentes")
}

func TestEngine_Initialize_BalancesDeAperturaSobreescriben(t *testing.T) {
	e := kardex.NewEngine(nil, nil)
	apertura := map[string]entity.Balance{
		"RM-A": {ItemCode: "RM-A", Qty: qty("-12"), UOM: "Kg", Warehouse: "WH2"},
	}
	e.Initialize([]entity.Item{{Code: "RM-A", DefaultWarehouse: "WH1"}}, "WH1", apertura, nil)

	assert.True(t, e.Qty("RM-A").Equal(qty("-12")), "la apertura sobreescribe, no suma")

	// Idempotencia por clave: aplicar la misma apertura otra vez da lo mismo.
	e.Initialize(nil, "WH1", apertura, nil)
	assert.True(t, e.Qty("RM-A").Equal(qty("-12")))
}

func TestEngine_ReInitialize_DuplicaAsientosDeSeed(t *testing.T) {
	// Limitación aceptada: el seed no se deduplica por id ni por contenido.
	seedLedger := []entity.Entry{{
		ID: "seed-1", Date: fecha1, Type: entity.EntryTypeINIT,
		ItemCode: "RM-A", Qty: qty("5"), Warehouse: "WH1", Reference: "Solicitud pendiente",
	}}
	e := kardex.NewEngine(nil, nil)
	e.Initialize(nil, "WH1", nil, seedLedger)
	e.Initialize(nil, "WH1", nil, seedLedger)

	assert.Len(t, e.State().Ledger, 2, "re-seed duplica los asientos del seed")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consistencia de balances (invariante central)
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ConsistenciaBalanceLedger(t *testing.T) {
	// Apertura con ajuste de seed: RM-A arranca en -5 con un asiento INIT.
	e := kardex.NewEngine(nil, nil)
	e.Initialize(
		[]entity.Item{
			{Code: "RM-A", DefaultWarehouse: "WH1", Kind: entity.ItemKindRaw},
			{Code: "FG-B", DefaultWarehouse: "WH1", Kind: entity.ItemKindFinished},
		},
		"WH1",
		map[string]entity.Balance{"RM-A": {ItemCode: "RM-A", Qty: qty("-5"), Warehouse: "WH1"}},
		[]entity.Entry{{ID: "seed-1", Date: fecha1, Type: entity.EntryTypeINIT, ItemCode: "RM-A", Qty: qty("5"), Warehouse: "WH1"}},
	)

	require.NoError(t, e.Receive(fecha1, "RM-A", qty("100.5"), "Kg", nil, "Molinos SA"))
	_, err := e.Issue(fecha1, []kardex.IssueLine{
		{ItemCode: "RM-A", Qty: qty("30.25")},
		{ItemCode: "RM-A", Qty: qty("0.25")},
	}, "Producción")
	require.NoError(t, err)
	require.NoError(t, e.Manufacture(fecha2, "FG-B", qty("40"), "Und", "OP-001"))
	_, err = e.Sell(fecha2, "Cliente Uno", []kardex.SellLine{{ItemCode: "FG-B", Qty: qty("15")}})
	require.NoError(t, err)

	state := e.State()
	for _, code := range []string{"RM-A", "FG-B"} {
		balance := state.Balances[code].Qty
		suma := signedSum(state, code)
		assert.True(t, balance.Equal(suma),
			"balance de %s (%s) debe igualar la suma con signo del ledger (%s), sin tolerancia",
			code, balance, suma)
	}
	// Valores exactos del escenario.
	assert.True(t, e.Qty("RM-A").Equal(qty("65")), "-5 +100.5 -30.25 -0.25 = 65")
	assert.True(t, e.Qty("FG-B").Equal(qty("25")), "40 - 15 = 25")
}

// ──────────────────────────────────────────────────────────────────────────────
// No-ops por entrada inválida
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ReceiveCantidadInvalida_NoOp(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "RM-A", DefaultWarehouse: "WH1"})
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("10"), "Kg", nil, ""))
	antes := e.State()

	require.NoError(t, e.Receive(fecha1, "RM-A", decimal.Zero, "Kg", nil, ""))
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("-5"), "Kg", nil, ""))
	require.NoError(t, e.Receive(fecha1, "", qty("5"), "Kg", nil, ""))

	assert.Equal(t, antes, e.State(), "cantidades cero/negativas y código vacío no deben mutar balances ni ledger")
}

func TestEngine_IssueFiltraLineasInvalidas_Atomicidad(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "A", DefaultWarehouse: "WH1"})
	antes := len(e.State().Ledger)

	applied, err := e.Issue(fecha1, []kardex.IssueLine{
		{ItemCode: "A", Qty: qty("5")},
		{ItemCode: "", Qty: qty("3")},
		{ItemCode: "B", Qty: qty("-1")},
	}, "Vale-7")
	require.NoError(t, err)

	assert.Equal(t, 1, applied, "solo la línea de A es válida")
	state := e.State()
	assert.Len(t, state.Ledger, antes+1, "el ledger gana exactamente un asiento")
	assert.Equal(t, entity.EntryTypeISSUE, state.Ledger[0].Type)
	assert.Equal(t, "Vale-7", state.Ledger[0].Reference)
	assert.True(t, e.Qty("A").Equal(qty("-5")), "sin guarda de stock: el balance cruza a negativo")
	assert.True(t, e.Qty("B").IsZero(), "la línea inválida de B no debe crear movimiento")
}

func TestEngine_IssueTodasInvalidas_NoOp(t *testing.T) {
	e := newReadyEngine(t)
	antes := e.State()

	applied, err := e.Issue(fecha1, []kardex.IssueLine{
		{ItemCode: "", Qty: qty("3")},
		{ItemCode: "X", Qty: decimal.Zero},
	}, "")
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, antes, e.State(), "si ninguna línea es válida la llamada completa es no-op")
}

func TestEngine_SellSinLineas_NoOp(t *testing.T) {
	e := newReadyEngine(t)
	antes := e.State()

	applied, err := e.Sell(fecha1, "Cliente Uno", nil)
	require.NoError(t, err, "vender con lines vacías no debe fallar")
	assert.Zero(t, applied)
	assert.Equal(t, antes, e.State())
}

// ──────────────────────────────────────────────────────────────────────────────
// Undo de un solo nivel
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_Undo_RestauraExactamenteUnPaso(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "RM-A", DefaultWarehouse: "WH1"})

	require.NoError(t, e.Receive(fecha1, "RM-A", qty("100"), "Kg", nil, "Molinos SA"))
	s1 := e.State()

	_, err := e.Issue(fecha2, []kardex.IssueLine{{ItemCode: "RM-A", Qty: qty("30")}}, "Vale-1")
	require.NoError(t, err)

	require.True(t, e.Undo(), "debe haber snapshot para deshacer")
	assert.Equal(t, s1, e.State(), "Undo debe restaurar S1 exacto (no S0)")

	// El snapshot se consume: un segundo Undo inmediato es no-op.
	assert.False(t, e.Undo(), "undo encadenado no retrocede dos pasos")
	assert.Equal(t, s1, e.State(), "el estado se queda en S1")
}

func TestEngine_UndoSinSnapshot_NoOp(t *testing.T) {
	e := newReadyEngine(t)
	assert.False(t, e.Undo(), "sin mutaciones previas no hay nada que deshacer")
}

func TestEngine_NoOpNoPisaElSnapshot(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "RM-A", DefaultWarehouse: "WH1"})
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("100"), "Kg", nil, ""))
	s0 := e.State()
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("40"), "Kg", nil, ""))

	// No-op inválido entre la mutación y el undo.
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("-1"), "Kg", nil, ""))

	require.True(t, e.Undo())
	assert.Equal(t, s0, e.State(), "el no-op no debe sobrescribir el snapshot de la última mutación real")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario de punta a punta (harina)
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_EscenarioHarina(t *testing.T) {
	e := newReadyEngine(t)

	require.NoError(t, e.Receive(fecha1, "FLOUR", qty("100"), "Kg", nil, ""))
	assert.True(t, e.Qty("FLOUR").Equal(qty("100")))

	state := e.State()
	require.Len(t, state.Ledger, 1)
	assert.Equal(t, entity.EntryTypeRECEIVE, state.Ledger[0].Type)
	assert.True(t, state.Ledger[0].Qty.Equal(qty("100")))

	applied, err := e.Issue(fecha2, []kardex.IssueLine{{ItemCode: "FLOUR", Qty: qty("30")}}, "Baking")
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	assert.True(t, e.Qty("FLOUR").Equal(qty("70")))
	state = e.State()
	require.Len(t, state.Ledger, 2)
	// Más reciente primero: la salida encabeza el historial.
	assert.Equal(t, entity.EntryTypeISSUE, state.Ledger[0].Type)
	assert.True(t, state.Ledger[0].Qty.Equal(qty("30")))
	assert.Equal(t, "Baking", state.Ledger[0].Reference)
	assert.Equal(t, entity.EntryTypeRECEIVE, state.Ledger[1].Type)
}

// ──────────────────────────────────────────────────────────────────────────────
// Detalles de balance: uom, último costo, autovivificación
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_Receive_ActualizaUOMyUltimoCosto(t *testing.T) {
	e := newReadyEngine(t)
	rate := qty("3500.50")

	require.NoError(t, e.Receive(fecha1, "RM-A", qty("10"), "Kg", &rate, "Molinos SA"))

	state := e.State()
	b := state.Balances["RM-A"]
	require.NotNil(t, b, "el balance se autovivifica al primer movimiento")
	assert.Equal(t, "Kg", b.UOM)
	require.NotNil(t, b.LastRate)
	assert.True(t, b.LastRate.Equal(rate))
	assert.Equal(t, "WH1", b.Warehouse, "sin bodega propia hereda la bodega por defecto")
	assert.Equal(t, "Molinos SA", state.Ledger[0].Reference)
}

func TestEngine_Sell_ArrastraRateYCliente(t *testing.T) {
	e := newReadyEngine(t)
	rate := qty("12000")

	applied, err := e.Sell(fecha1, "Cliente Uno", []kardex.SellLine{
		{ItemCode: "FG-B", Qty: qty("3"), UOM: "Und", Rate: &rate},
	})
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	state := e.State()
	en := state.Ledger[0]
	assert.Equal(t, entity.EntryTypeSELL, en.Type)
	assert.Equal(t, "Cliente Uno", en.Reference)
	require.NotNil(t, en.Rate)
	assert.True(t, en.Rate.Equal(rate), "el rate se arrastra al asiento para reportes de ingreso")
	assert.True(t, e.Qty("FG-B").Equal(qty("-3")), "la venta puede dejar balance negativo")
}

func TestEngine_State_DevuelveCopiaIndependiente(t *testing.T) {
	e := newReadyEngine(t, entity.Item{Code: "RM-A", DefaultWarehouse: "WH1"})
	require.NoError(t, e.Receive(fecha1, "RM-A", qty("10"), "Kg", nil, ""))

	state := e.State()
	state.Balances["RM-A"].Qty = qty("999")
	state.Ledger[0].Reference = "mutado"

	assert.True(t, e.Qty("RM-A").Equal(qty("10")), "mutar la copia no debe tocar el agregado del motor")
	assert.NotEqual(t, "mutado", e.State().Ledger[0].Reference)
}
