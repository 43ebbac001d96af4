package restapi

import (
	"errors"
	"net/http"

	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/models"
)

func (api *RestAPI) disruptionsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := api.Board.Disruptions(r.Context())
	if err != nil {
		if errors.Is(err, board.ErrAllSitesFailed) {
			api.upstreamErrorResponse(w, r, map[string]interface{}{
				"list":   []models.DisruptionRecord{},
				"issues": snapshot.Issues,
			}, "Kunde inte hämta störningsinformation")
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(snapshot.Disruptions, ""))
}
