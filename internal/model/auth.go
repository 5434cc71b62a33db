package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims presented by interviewers and participants
type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
