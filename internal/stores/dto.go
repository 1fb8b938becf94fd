package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
)

// StoreDTO is the transport shape for a store.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoreWithRoleDTO augments a store with the caller's membership metadata.
type StoreWithRoleDTO struct {
	StoreDTO
	UserRole  enums.MemberRole `json:"user_role"`
	IsDefault bool             `json:"is_default"`
}

// CreateStoreDTO holds the data needed to persist a new store.
type CreateStoreDTO struct {
	Name        string
	Description *string
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name        *string
	Description *string
}

func FromModel(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		Name:        c.Name,
		Description: c.Description,
		IsActive:    true,
	}
}
