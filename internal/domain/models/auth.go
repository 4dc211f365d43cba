package models

import "time"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims are the verified contents of a session token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}
