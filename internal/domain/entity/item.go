package entity

// Clases de artículo. La clase se asigna una sola vez al cargar el maestro
// (clasificación por prefijo del código, ver infrastructure/seed) y es
// orientativa: filtra qué operaciones ofrece la capa de presentación para el
// artículo, pero el motor no la exige en las transiciones.
const (
	ItemKindRaw      = "RAW"      // materia prima (entradas/salidas)
	ItemKindFinished = "FINISHED" // producto terminado (producción/venta)
	ItemKindOther    = "OTHER"    // sin convención reconocida
)

// Item representa una entrada del maestro de artículos. Es inmutable después
// de la inicialización: el núcleo no expone actualización ni borrado.
type Item struct {
	Code             string `json:"item_code"`
	DefaultWarehouse string `json:"default_warehouse"`
	Kind             string `json:"kind"`
}
