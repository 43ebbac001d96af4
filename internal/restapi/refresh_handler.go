package restapi

import (
	"net/http"

	"github.com/spleiner/slussen/internal/board"
)

// refreshHandler drops the cache, refetches both resources and returns the full board.
func (api *RestAPI) refreshHandler(w http.ResponseWriter, r *http.Request) {
	b, err := api.Board.RefreshBoard(r.Context(), board.Selection{All: true})
	api.sendBoard(w, r, b, err)
}
