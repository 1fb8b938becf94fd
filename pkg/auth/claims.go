package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	Name     string
	Role     enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients. Store context
// is deliberately not part of the token; it is resolved per request.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Username string         `json:"username"`
	Name     string         `json:"name"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
