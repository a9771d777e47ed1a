package auth

// DevAuthRequest - запрос dev-токена; пустой user_id означает dev-user
type DevAuthRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=100,printascii"`
}

// DevAuthResponse - ответ с access token
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// ErrorResponse - формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
