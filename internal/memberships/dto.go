package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/enums"
)

// MembershipWithStore joins a membership with the store it grants access to.
type MembershipWithStore struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	StoreID          uuid.UUID        `json:"store_id"`
	Role             enums.MemberRole `json:"role"`
	IsDefault        bool             `json:"is_default"`
	StoreName        string           `json:"store_name"`
	StoreDescription *string          `json:"store_description,omitempty"`
	StoreIsActive    bool             `json:"store_is_active"`
	CreatedAt        time.Time        `json:"created_at"`
}

// StoreUserDTO describes one member of a store for the roster endpoint.
type StoreUserDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Username     string           `json:"username"`
	Name         string           `json:"name"`
	UserRole     enums.UserRole   `json:"user_role"`
	Role         enums.MemberRole `json:"role"`
	IsDefault    bool             `json:"is_default"`
	JoinedAt     time.Time        `json:"joined_at"`
}

type membershipWithStoreRow struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	StoreID          uuid.UUID
	Role             enums.MemberRole
	IsDefault        bool
	StoreName        string
	StoreDescription *string
	StoreIsActive    bool
	CreatedAt        time.Time
}

type storeUserRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	StoreID   uuid.UUID
	Role      enums.MemberRole
	IsDefault bool
	Username  string
	Name      string
	UserRole  enums.UserRole
	CreatedAt time.Time
}

func membershipRowsToDTO(rows []membershipWithStoreRow) []MembershipWithStore {
	out := make([]MembershipWithStore, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipWithStore{
			ID:               row.ID,
			UserID:           row.UserID,
			StoreID:          row.StoreID,
			Role:             row.Role,
			IsDefault:        row.IsDefault,
			StoreName:        row.StoreName,
			StoreDescription: row.StoreDescription,
			StoreIsActive:    row.StoreIsActive,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out
}

func storeUsersFromRows(rows []storeUserRow) []StoreUserDTO {
	out := make([]StoreUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StoreUserDTO{
			MembershipID: row.ID,
			UserID:       row.UserID,
			Username:     row.Username,
			Name:         row.Name,
			UserRole:     row.UserRole,
			Role:         row.Role,
			IsDefault:    row.IsDefault,
			JoinedAt:     row.CreatedAt,
		})
	}
	return out
}
