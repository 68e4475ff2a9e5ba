package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Kardex *KardexHandler
	Export *ExportHandler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Kardex: operaciones del motor
	kardexGroup := api.Group("/kardex")
	kardexGroup.Post("/receive", deps.Kardex.Receive)
	kardexGroup.Post("/issue", deps.Kardex.Issue)
	kardexGroup.Post("/manufacture", deps.Kardex.Manufacture)
	kardexGroup.Post("/sell", deps.Kardex.Sell)
	kardexGroup.Post("/undo", deps.Kardex.Undo)

	// Lecturas para tablas y reportes
	kardexGroup.Get("/state", deps.Kardex.GetState)
	kardexGroup.Get("/items", deps.Kardex.GetItems)
	kardexGroup.Get("/balances", deps.Kardex.GetBalances)
	kardexGroup.Get("/ledger", deps.Kardex.GetLedger)
	kardexGroup.Get("/qty/:itemCode", deps.Kardex.GetQty)

	// Exportación a documento
	kardexGroup.Get("/export/balances.pdf", deps.Export.ExportBalances)
	kardexGroup.Get("/export/ledger.pdf", deps.Export.ExportLedger)
}
