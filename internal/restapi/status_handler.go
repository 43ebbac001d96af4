package restapi

import (
	"net/http"

	"github.com/spleiner/slussen/internal/models"
)

func (api *RestAPI) statusHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(api.Board.Status()))
}
