package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the OAuth2 token_type returned with every access token
const TokenTypeBearer = "bearer"

// TokenClaims is the JWT payload; Subject carries the username
type TokenClaims struct {
	jwt.RegisteredClaims
}

// TokenResponse is the body returned by the login and token endpoints
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
