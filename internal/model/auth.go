package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims identifying an anonymous form session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}
