package app

import (
	"net/http"

	"github.com/promopress/promopress/api"
)

func (app *Application) SendContactMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ContactRequest

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

	data := map[string]string{
		"Name":    req.Name,
		"Email":   req.Email,
		"Message": req.Message,
	}

	app.background(func() {
		err := app.mailer.Send(app.config.SMTP.ContactRecipient, "contact_message.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send contact message", "error", err, "from", req.Email)
		}
	})

	resp := api.MessageResponse{
		Message: "Thanks for reaching out, we will get back to you soon",
	}

	err = app.writeJSON(w, http.StatusAccepted, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
