package restapi

import (
	"net/http"

	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/utils"
)

// parseSelection reads the ?lines= parameter. An absent parameter selects
// every line; a present but empty one selects none.
func parseSelection(r *http.Request) (board.Selection, map[string][]string) {
	query := r.URL.Query()
	if !query.Has("lines") {
		return board.Selection{All: true}, nil
	}

	lines, err := utils.ParseLineSelection(query.Get("lines"))
	if err != nil {
		return board.Selection{}, map[string][]string{
			"lines": {err.Error()},
		}
	}
	return board.Selection{Lines: lines}, nil
}
