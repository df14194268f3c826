package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT custom claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
