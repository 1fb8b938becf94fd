package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
)

// Repository exposes membership persistence operations. WithTx rebinds the
// repository to an open transaction so multi-statement flips stay atomic.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListUserStores(ctx context.Context, userID uuid.UUID) ([]MembershipWithStore, error)
	GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error)
	GetDefaultMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error)
	GetFirstMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error)
	CreateMembership(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole, isDefault bool) (*models.StoreMembership, error)
	DeleteMembership(ctx context.Context, storeID, userID uuid.UUID) (int64, error)
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	SetDefault(ctx context.Context, userID, storeID uuid.UUID) error
	HasDefault(ctx context.Context, userID uuid.UUID) (bool, error)
	ListStoreUsers(ctx context.Context, storeID uuid.UUID) ([]StoreUserDTO, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListUserStores returns the stores a user belongs to along with membership
// metadata, ordered by membership age so the fallback store is stable.
func (r *repository) ListUserStores(ctx context.Context, userID uuid.UUID) ([]MembershipWithStore, error) {
	var rows []membershipWithStoreRow

	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Select("store_memberships.*, stores.name AS store_name, stores.description AS store_description, stores.is_active AS store_is_active").
		Joins("JOIN stores ON stores.id = store_memberships.store_id").
		Where("store_memberships.user_id = ?", userID).
		Order("store_memberships.created_at, store_memberships.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and store.
func (r *repository) GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetDefaultMembership returns the membership the user flagged as default,
// or gorm.ErrRecordNotFound when none exists.
func (r *repository) GetDefaultMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default", userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetFirstMembership returns the user's earliest membership by creation time.
func (r *repository) GetFirstMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *repository) CreateMembership(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole, isDefault bool) (*models.StoreMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.StoreMembership{
		StoreID:   storeID,
		UserID:    userID,
		Role:      role,
		IsDefault: isDefault,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteMembership removes the (user, store) relation. Returns the number of
// rows removed so callers can distinguish a missing membership.
func (r *repository) DeleteMembership(ctx context.Context, storeID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&models.StoreMembership{})
	return res.RowsAffected, res.Error
}

// ClearDefault drops the default flag from every membership of the user.
func (r *repository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ?", userID).
		UpdateColumn("is_default", false).Error
}

// SetDefault flags the (user, store) membership as the user's default.
func (r *repository) SetDefault(ctx context.Context, userID, storeID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		UpdateColumn("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasDefault reports whether the user already has a default membership.
func (r *repository) HasDefault(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ? AND is_default", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListStoreUsers returns memberships for the store along with user metadata.
func (r *repository) ListStoreUsers(ctx context.Context, storeID uuid.UUID) ([]StoreUserDTO, error) {
	var rows []storeUserRow
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Select("store_memberships.*, users.username, users.name, users.role AS user_role").
		Joins("JOIN users ON users.id = store_memberships.user_id").
		Where("store_memberships.store_id = ?", storeID).
		Order("store_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return storeUsersFromRows(rows), nil
}
