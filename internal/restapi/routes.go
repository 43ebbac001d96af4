package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func requireRefreshKey(api *RestAPI, finalHandler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidRefreshKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	}
}

// SetRoutes registers every board endpoint on router.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/api/board", api.boardHandler)
	router.HandlerFunc(http.MethodGet, "/api/departures", api.departuresHandler)
	router.HandlerFunc(http.MethodGet, "/api/lines", api.linesHandler)
	router.HandlerFunc(http.MethodGet, "/api/lines/:line/departures", api.lineDeparturesHandler)
	router.HandlerFunc(http.MethodGet, "/api/disruptions", api.disruptionsHandler)
	router.HandlerFunc(http.MethodGet, "/api/status", api.statusHandler)
	router.HandlerFunc(http.MethodPost, "/api/refresh", requireRefreshKey(api, api.refreshHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.sendMethodNotAllowed)
}

// Handler wraps h with the middleware every request passes through.
// Order, outermost first: security headers, request logging, rate limiting, compression.
func (api *RestAPI) Handler(h http.Handler) http.Handler {
	h = CompressionMiddleware(h)
	h = api.rateLimiter(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	return api.WithSecurityHeaders(h)
}
