package app

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
)

// Session links carry a Pi-app login over to a desktop browser: the browser
// shows the code as a QR, the Pi app scans it and calls sync, the browser
// polls the user endpoint (and a Redis channel notifies any live subscriber).

func sessionChannel(code string) string {
	return "session:" + code
}

func (app *Application) CreateSessionCodeHandler(w http.ResponseWriter, r *http.Request) {
	link := &domain.SessionLink{
		Code: uuid.NewString(),
	}

	err := app.sessionLinkRepo.Create(r.Context(), link)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SessionCodeResponse{
		Code: link.Code,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SyncSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req api.SyncSessionRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	piIdentity, err := app.piVerifier.VerifyAccessToken(r.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAccessToken) {
			app.unauthorizedAccessResponse(w, r)
			return
		}
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusServiceUnavailable, "The Pi platform is temporarily unreachable, please retry shortly")
		return
	}

	user := &domain.User{
		PiID:     piIdentity.PiID,
		Username: piIdentity.Username,
		Role:     domain.RoleUser,
	}

	err = app.userRepo.Upsert(r.Context(), user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.sessionLinkRepo.AttachUser(r.Context(), req.Code, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, errors.New("session code not found or expired"))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	// Best effort: polling still works when nobody is subscribed.
	err = app.redis.Publish(r.Context(), sessionChannel(req.Code), user.Username).Err()
	if err != nil {
		app.logError(r, err)
	}

	resp := api.MessageResponse{
		Message: "Session linked",
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSessionUserHandler(w http.ResponseWriter, r *http.Request) {
	code := app.readStringParam(r, "code")

	if _, err := uuid.Parse(code); err != nil {
		app.badRequestResponse(w, r, errors.New("code must be a UUID"))
		return
	}

	link, err := app.sessionLinkRepo.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, errors.New("session code not found or expired"))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	if link.UserID == nil {
		app.notFoundResponseWithErr(w, r, errors.New("session code not linked yet"))
		return
	}

	user, err := app.userRepo.GetByID(r.Context(), *link.UserID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SessionUserResponse{
		Username: user.Username,
		PiId:     user.PiID,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
