package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/api/apierr"
)

// maxBodyBytes caps signup and login request bodies
const maxBodyBytes = 16 << 10

// decodeBody reads exactly one JSON value from the request body into v.
// On failure it writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierr.WriteError(w, apierr.NewInvalidRequestError("request body too large"))
			return false
		}
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return false
	}
	if dec.More() {
		apierr.WriteError(w, apierr.NewInvalidRequestError("request body must hold a single JSON object"))
		return false
	}
	return true
}
