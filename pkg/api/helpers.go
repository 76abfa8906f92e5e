package api

import (
	"encoding/json"
	"net/http"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK sends the {"status":"ok"} acknowledgement.
func OK(w http.ResponseWriter) {
	Success(w, http.StatusOK, StatusResponse{Status: "ok"})
}
