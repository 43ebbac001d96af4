package restapi

import (
	"errors"
	"net/http"

	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/models"
	"github.com/spleiner/slussen/internal/utils"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	selection, fieldErrors := parseSelection(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	api.sendDepartures(w, r, selection)
}

func (api *RestAPI) lineDeparturesHandler(w http.ResponseWriter, r *http.Request) {
	line := utils.ExtractParam(r, "line")
	if err := utils.ValidateLineID(line); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"line": {err.Error()},
		})
		return
	}
	api.sendDepartures(w, r, board.Selection{Lines: []string{line}})
}

func (api *RestAPI) sendDepartures(w http.ResponseWriter, r *http.Request, selection board.Selection) {
	snapshot, err := api.Board.Departures(r.Context())
	if err != nil {
		if errors.Is(err, board.ErrAllSitesFailed) {
			api.upstreamErrorResponse(w, r, map[string]interface{}{
				"list":   []models.DisplayRow{},
				"issues": snapshot.Issues,
			}, board.NoticeAllSitesFailed)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	rows, _, notice := board.SelectRows(snapshot.Departures, selection)
	api.sendResponse(w, r, models.NewListResponse(rows, notice))
}
