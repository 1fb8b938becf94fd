package auth

import (
	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/internal/stores"
	"github.com/maajod/maajod-backend/internal/users"
)

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Username string
	Password string
}

// RegisterRequest carries the data posted to the register endpoint.
type RegisterRequest struct {
	Username string
	Password string
	Name     string
	Role     string
}

// AuthResponse is returned by login and register: the bearer token plus the
// signed-in user's identity and store access.
type AuthResponse struct {
	Token          string                    `json:"token"`
	User           users.UserDTO             `json:"user"`
	Stores         []stores.StoreWithRoleDTO `json:"stores"`
	DefaultStoreID *uuid.UUID                `json:"default_store_id,omitempty"`
}

// MeResponse mirrors AuthResponse without reissuing a token.
type MeResponse struct {
	User           users.UserDTO             `json:"user"`
	Stores         []stores.StoreWithRoleDTO `json:"stores"`
	DefaultStoreID *uuid.UUID                `json:"default_store_id,omitempty"`
}
