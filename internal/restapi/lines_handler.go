package restapi

import (
	"errors"
	"net/http"

	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/models"
)

func (api *RestAPI) linesHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := api.Board.Departures(r.Context())
	if err != nil {
		if errors.Is(err, board.ErrAllSitesFailed) {
			api.upstreamErrorResponse(w, r, nil, board.NoticeAllSitesFailed)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	lines := board.ListLines(snapshot.Departures)
	notice := ""
	if len(lines) == 0 {
		notice = board.NoticeNoDepartures
	}
	api.sendResponse(w, r, models.NewListResponse(lines, notice))
}
