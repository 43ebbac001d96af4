package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spleiner/slussen/internal/logging"
	"github.com/spleiner/slussen/internal/models"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response when the refresh key is missing or wrong.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewResponse(http.StatusUnauthorized, nil, "permission denied"))
}

// serverErrorResponse sends a 500, or a 503 when the client went away or its
// deadline passed before the data was ready.
func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logging.LogWarning(api.Logger, "request abandoned", err)
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable, nil, "request cancelled"))
		return
	}
	logging.LogError(api.Logger, "request failed", err)
	api.sendResponse(w, r, models.NewResponse(http.StatusInternalServerError, nil, "internal server error"))
}

// upstreamErrorResponse sends a 502 Bad Gateway when no SL site could be reached.
// data still carries whatever was assembled so the client can show the issues.
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, data interface{}, text string) {
	api.sendResponse(w, r, models.NewResponse(http.StatusBadGateway, data, text))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}
