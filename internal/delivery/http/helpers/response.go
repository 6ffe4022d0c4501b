package helpers

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the uniform envelope for all API responses.
// On success: Success is true and Data is set. On error: Success is false and
// Error carries a human-readable message.
// swagger:model APIResponse
type APIResponse struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode,
// and encodes a successful APIResponse with the given data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// WriteJSONPage writes a successful APIResponse with pagination metadata.
func WriteJSONPage(w http.ResponseWriter, statusCode int, data any, meta PaginationMeta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data, Pagination: &meta})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode,
// and encodes a failed APIResponse with the given message.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}
