package auth

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // "Bearer"
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// MeResponse describes the authenticated operator
type MeResponse struct {
	Username string `json:"username"`
}
