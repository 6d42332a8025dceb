package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the JSON response body with the given status.
// A nil data writes the status line alone, leaving the body empty.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent answers 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
