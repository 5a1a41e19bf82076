package types

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	Email     string `json:"email"`
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}
