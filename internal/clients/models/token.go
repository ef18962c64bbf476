package models

// GrantClientCredentials is the only grant type the token endpoint accepts.
const GrantClientCredentials = "client_credentials"

// TokenRequest is the parsed body of a token request.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	// Scope is the space-separated requested scope set. Empty requests
	// every scope the client holds.
	Scope string
}

// TokenResponse is the issued access token in OAuth response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}
