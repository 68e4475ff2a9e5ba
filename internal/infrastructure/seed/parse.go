package seed

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// parseItems lee el maestro de artículos: columnas identificadas por
// substring ("item code"/"item", "warehouse"). Filas sin código se descartan;
// códigos repetidos conservan la primera aparición.
func (l *Loader) parseItems(r io.Reader) []entity.Item {
	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return []entity.Item{}
	}
	idxCode := findColumn(header, "item code", "item")
	idxWarehouse := findColumn(header, "warehouse", "bodega")
	if idxCode < 0 {
		l.log.Warn().Msg("maestro de artículos sin columna de código; seed de items vacío")
		return []entity.Item{}
	}

	items := []entity.Item{}
	seen := map[string]bool{}
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn().Int("line", line).Err(err).Msg("fila de items ilegible (omitida)")
			continue
		}
		code := field(rec, idxCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		wh := field(rec, idxWarehouse)
		if wh == "" {
			wh = l.cfg.DefaultWarehouse
		}
		items = append(items, entity.Item{
			Code:             code,
			DefaultWarehouse: wh,
			Kind:             l.Classify(code),
		})
	}
	return items
}

// parseRequests lee las solicitudes de material pendientes. Cada fila válida
// se interpreta como un asiento INIT de apertura (material ya comprometido) y
// como un ajuste negativo del balance de apertura del artículo. Es una
// convención de seeding, no una regla de negocio viva.
func (l *Loader) parseRequests(r io.Reader) (map[string]entity.Balance, []entity.Entry) {
	balances := map[string]entity.Balance{}
	ledger := []entity.Entry{}

	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return balances, ledger
	}
	idxCode := findColumn(header, "item code", "item")
	idxQty := findColumn(header, "quantity", "qty", "cantidad")
	idxUOM := findColumn(header, "uom", "unidad")
	idxWarehouse := findColumn(header, "warehouse", "bodega")
	idxDate := findColumn(header, "transaction date", "date", "fecha")
	if idxCode < 0 || idxQty < 0 {
		l.log.Warn().Msg("feed de solicitudes sin columnas de código/cantidad; apertura vacía")
		return balances, ledger
	}

	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn().Int("line", line).Err(err).Msg("fila de solicitudes ilegible (omitida)")
			continue
		}
		code := field(rec, idxCode)
		qty, qerr := decimal.NewFromString(field(rec, idxQty))
		if code == "" || qerr != nil || !qty.IsPositive() {
			continue
		}
		uom := field(rec, idxUOM)
		wh := field(rec, idxWarehouse)
		if wh == "" {
			wh = l.cfg.DefaultWarehouse
		}

		// Ajuste de apertura: la solicitud ya consumió stock.
		b, ok := balances[code]
		if !ok {
			b = entity.Balance{ItemCode: code, Qty: decimal.Zero}
		}
		b.Qty = b.Qty.Sub(qty)
		if uom != "" {
			b.UOM = uom
		}
		b.Warehouse = wh
		balances[code] = b

		ledger = append(ledger, entity.Entry{
			ID:        uuid.New().String(),
			Date:      parseDate(field(rec, idxDate)),
			Type:      entity.EntryTypeINIT,
			ItemCode:  code,
			Qty:       qty,
			UOM:       uom,
			Warehouse: wh,
			Reference: "Solicitud pendiente",
		})
	}
	return balances, ledger
}

// findColumn devuelve el índice de la primera columna cuyo encabezado
// contiene alguna de las claves (sin distinguir mayúsculas), o -1.
// Las claves se prueban en orden: la más específica primero.
func findColumn(header []string, keys ...string) int {
	for _, key := range keys {
		key = strings.ToLower(key)
		for i, col := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(col)), key) {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, idx int) string {
	if idx >= 0 && idx < len(rec) {
		return strings.TrimSpace(rec[idx])
	}
	return ""
}

// parseDate intenta los formatos habituales de los feeds; si ninguno aplica
// devuelve el cero de time.Time (la fila sigue siendo válida).
func parseDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02-01-2006",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// skipBOM descarta el BOM UTF-8 si el feed lo trae (exportadores de ERP
// suelen incluirlo).
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	if peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
