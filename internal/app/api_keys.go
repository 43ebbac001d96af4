package app

import "net/http"

// RequestHasInvalidRefreshKey reports whether r is missing a valid ?key= for
// the refresh endpoint. With no keys configured every request passes.
func (app *Application) RequestHasInvalidRefreshKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidRefreshKey(key)
}

func (app *Application) IsInvalidRefreshKey(key string) bool {
	validKeys := app.Config.RefreshKeys
	if len(validKeys) == 0 {
		return false
	}
	if key == "" {
		return true
	}

	for _, validKey := range validKeys {
		if key == validKey {
			return false
		}
	}

	return true
}
