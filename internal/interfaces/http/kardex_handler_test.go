package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	apphttp "github.com/jhoicas/Kardex-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp construye una aplicación Fiber con el router real y un motor
// en memoria. ready=false deja el motor sin inicializar para probar el 503.
func buildTestApp(ready bool) (*fiber.App, *kardex.Engine) {
	engine := kardex.NewEngine(nil, nil)
	if ready {
		engine.Initialize(nil, "WH1", nil, nil)
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Kardex: apphttp.NewKardexHandler(engine),
		Export: apphttp.NewExportHandler(engine, nil),
	})
	return app, engine
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var payload map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &payload)
	return resp, payload
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_FlujoCompleto(t *testing.T) {
	app, engine := buildTestApp(true)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
		`{"date":"2025-01-01","item_code":"FLOUR","qty":100,"uom":"Kg","supplier":"Molinos SA"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, app, fiber.MethodGet, "/api/kardex/qty/FLOUR", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "FLOUR", payload["item_code"])
	// shopspring/decimal serializa como string JSON por defecto.
	assert.Equal(t, "100", payload["qty"])

	require.Len(t, engine.State().Ledger, 1)
}

func TestReceive_ValidacionDeCantidad(t *testing.T) {
	app, engine := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
		`{"date":"2025-01-01","item_code":"FLOUR","qty":-5}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", payload["code"])
	assert.Empty(t, engine.State().Ledger, "la petición rechazada no debe llegar al motor")
}

func TestReceive_FechaMalformada(t *testing.T) {
	app, _ := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
		`{"date":"01/15/2025","item_code":"FLOUR","qty":10}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", payload["code"])
}

func TestIssue_FiltraLineasInvalidas(t *testing.T) {
	app, engine := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/issue",
		`{"date":"2025-01-02","reference":"Baking","lines":[
			{"item_code":"FLOUR","qty":30},
			{"item_code":"","qty":3}
		]}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, payload["applied"], "solo la línea válida cuenta")
	require.Len(t, engine.State().Ledger, 1)
	assert.Equal(t, "Baking", engine.State().Ledger[0].Reference)
}

func TestSell_ClienteVacio_EsRechazado(t *testing.T) {
	// El motor no exige cliente; este contrato pertenece a la capa HTTP.
	app, engine := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/sell",
		`{"date":"2025-01-02","customer":"","lines":[{"item_code":"FG-B","qty":1}]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", payload["code"])
	assert.Empty(t, engine.State().Ledger)
}

func TestSell_SinLineas_NoFalla(t *testing.T) {
	app, engine := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/sell",
		`{"date":"2025-01-02","customer":"Cliente Uno","lines":[]}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Nil(t, payload["applied"], "cero líneas aplicadas se omite del cuerpo")
	assert.Empty(t, engine.State().Ledger)
}

func TestMutaciones_MotorSinInicializar_503(t *testing.T) {
	app, _ := buildTestApp(false)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
		`{"item_code":"FLOUR","qty":10}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "NOT_READY", payload["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Undo y lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestUndo_DeshaceYLuegoNoOp(t *testing.T) {
	app, engine := buildTestApp(true)

	doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
		`{"date":"2025-01-01","item_code":"FLOUR","qty":100}`)

	resp, payload := doJSON(t, app, fiber.MethodPost, "/api/kardex/undo", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["restored"])
	assert.Empty(t, engine.State().Ledger, "la entrada deshecha desaparece del historial")

	_, payload = doJSON(t, app, fiber.MethodPost, "/api/kardex/undo", "")
	assert.Equal(t, false, payload["restored"], "sin snapshot el undo es no-op")
}

func TestLedger_LimiteDeConsulta(t *testing.T) {
	app, _ := buildTestApp(true)

	for _, code := range []string{"A", "B", "C"} {
		doJSON(t, app, fiber.MethodPost, "/api/kardex/receive",
			`{"item_code":"`+code+`","qty":1}`)
	}

	resp, payload := doJSON(t, app, fiber.MethodGet, "/api/kardex/ledger?limit=2", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, payload["total"])
	assert.Len(t, payload["ledger"], 2)

	// El más reciente primero.
	first := payload["ledger"].([]any)[0].(map[string]any)
	assert.Equal(t, "C", first["item_code"])
}

func TestState_LecturaConMotorVacio(t *testing.T) {
	app, _ := buildTestApp(true)

	resp, payload := doJSON(t, app, fiber.MethodGet, "/api/kardex/state", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "WH1", payload["default_warehouse"])
	assert.Empty(t, payload["items"])
}
