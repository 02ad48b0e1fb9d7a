package app

import (
	"net/http"

	"github.com/promopress/promopress/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	health := api.HealthcheckResponse{
		Status: "available",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, health, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
