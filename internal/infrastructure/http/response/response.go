package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/globalprice/products-api/internal/domain"
)

// ErrorResponse represents an error response. Details carries the raw
// upstream body on 502; Tip carries an operational hint on 503.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Tip     string `json:"tip,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{Error: err.Error()})
}

// UpstreamError sends a 502 carrying the pricing service's raw response
// body so the failure detail is never swallowed.
func UpstreamError(w http.ResponseWriter, err *domain.UpstreamError) {
	JSON(w, http.StatusBadGateway, ErrorResponse{
		Error:   "failed to convert price via pricing service",
		Details: err.Body,
	})
}

// Unreachable sends a 503 with a hint on where the pricing service is
// expected to listen.
func Unreachable(w http.ResponseWriter, err *domain.UnreachableError) {
	JSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error: "pricing service is unreachable. Is it running?",
		Tip:   fmt.Sprintf("Ensure the pricing service is listening on %s.", err.Endpoint),
	})
}
