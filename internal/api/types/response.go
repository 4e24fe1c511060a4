// internal/api/types/response.go
package types

// ErrorResponse is the wire shape of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
