package dto

// ErrorResponse is the structured error envelope: HTTP status, a
// machine-readable code, a human-readable message, and the request path.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}
