package api

type PiLoginRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type PiLoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type SessionCodeResponse struct {
	Code string `json:"code"`
}

type SyncSessionRequest struct {
	Code        string `json:"code" validate:"required,uuid4"`
	AccessToken string `json:"accessToken" validate:"required"`
}

type SessionUserResponse struct {
	Username string `json:"username"`
	PiId     string `json:"piId"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}
