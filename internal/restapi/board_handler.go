package restapi

import (
	"errors"
	"net/http"

	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/models"
)

func (api *RestAPI) boardHandler(w http.ResponseWriter, r *http.Request) {
	selection, fieldErrors := parseSelection(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	b, err := api.Board.Board(r.Context(), selection)
	api.sendBoard(w, r, b, err)
}

func (api *RestAPI) sendBoard(w http.ResponseWriter, r *http.Request, b models.Board, err error) {
	if err != nil {
		if errors.Is(err, board.ErrAllSitesFailed) {
			api.upstreamErrorResponse(w, r, b, b.Notice)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	if b.Notice != "" {
		api.sendResponse(w, r, models.NewResponse(http.StatusOK, b, b.Notice))
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(b))
}
