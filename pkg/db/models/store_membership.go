package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/enums"
)

// StoreMembership links a user with a store and captures their role and
// default-store flag. (user_id, store_id) is unique.
type StoreMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_store_memberships_user_store"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_memberships_user_store"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null;default:'member'"`
	IsDefault bool             `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
