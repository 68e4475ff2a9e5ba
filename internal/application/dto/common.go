package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta de confirmación de una mutación. Applied indica
// cuántas líneas se aplicaron (las inválidas se filtran en silencio).
type MessageResponse struct {
	Message string `json:"message"`
	Applied int    `json:"applied,omitempty"`
}
