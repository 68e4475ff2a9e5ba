package dto

import "github.com/shopspring/decimal"

// ReceiveRequest body para POST /api/kardex/receive.
type ReceiveRequest struct {
	Date     string           `json:"date"` // fecha de negocio, "2006-01-02"
	ItemCode string           `json:"item_code"`
	Qty      decimal.Decimal  `json:"qty"`
	UOM      string           `json:"uom,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	Supplier string           `json:"supplier,omitempty"`
}

// IssueLineRequest línea de salida de material.
type IssueLineRequest struct {
	ItemCode string          `json:"item_code"`
	Qty      decimal.Decimal `json:"qty"`
	UOM      string          `json:"uom,omitempty"`
}

// IssueRequest body para POST /api/kardex/issue.
type IssueRequest struct {
	Date      string             `json:"date"`
	Reference string             `json:"reference,omitempty"`
	Lines     []IssueLineRequest `json:"lines"`
}

// ManufactureRequest body para POST /api/kardex/manufacture.
type ManufactureRequest struct {
	Date      string          `json:"date"`
	ItemCode  string          `json:"item_code"`
	Qty       decimal.Decimal `json:"qty"`
	UOM       string          `json:"uom,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// SellLineRequest línea de venta; rate se arrastra al asiento para reportes.
type SellLineRequest struct {
	ItemCode string           `json:"item_code"`
	Qty      decimal.Decimal  `json:"qty"`
	UOM      string           `json:"uom,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// SellRequest body para POST /api/kardex/sell. Customer es obligatorio en
// esta capa (el motor no lo exige; la validación es responsabilidad del
// llamador según el contrato del núcleo).
type SellRequest struct {
	Date     string            `json:"date"`
	Customer string            `json:"customer"`
	Lines    []SellLineRequest `json:"lines"`
}

// QtyResponse respuesta de GET /api/kardex/qty/:itemCode.
type QtyResponse struct {
	ItemCode string          `json:"item_code"`
	Qty      decimal.Decimal `json:"qty"`
}

// UndoResponse respuesta de POST /api/kardex/undo.
type UndoResponse struct {
	Restored bool   `json:"restored"` // false = no había snapshot (no-op)
	Message  string `json:"message"`
}
