package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/internal/access"
	"github.com/maajod/maajod-backend/internal/memberships"
	"github.com/maajod/maajod-backend/pkg/db"
	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

type storeRepository interface {
	CreateWithTx(tx *gorm.DB, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CreateStoreInput captures the data required to open a new store.
type CreateStoreInput struct {
	Name        string
	Description *string
}

// AddUserInput captures the data required to attach a user to a store.
type AddUserInput struct {
	UserID uuid.UUID
	Role   enums.MemberRole
}

// Service exposes store and membership operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*StoreWithRoleDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]StoreWithRoleDTO, error)
	GetByID(ctx context.Context, userID, storeID uuid.UUID) (*StoreWithRoleDTO, error)
	Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	ListUsers(ctx context.Context, userID, storeID uuid.UUID) ([]memberships.StoreUserDTO, error)
	AddUser(ctx context.Context, actorID, storeID uuid.UUID, input AddUserInput) (*memberships.StoreUserDTO, error)
	RemoveUser(ctx context.Context, actorID, storeID, targetUserID uuid.UUID) error
	SetDefault(ctx context.Context, userID, storeID uuid.UUID) error
}

type service struct {
	repo        storeRepository
	memberships memberships.Repository
	users       usersRepository
	tx          txRunner
}

// NewService builds a store service with the provided repositories.
func NewService(repo storeRepository, membershipsRepo memberships.Repository, usersRepo usersRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		memberships: membershipsRepo,
		users:       usersRepo,
		tx:          tx,
	}, nil
}

// requireMembership loads the caller's membership and enforces a minimum
// role. Missing membership is forbidden, not found: a caller must not learn
// whether a store exists.
func (s *service) requireMembership(ctx context.Context, userID, storeID uuid.UUID, minimum enums.MemberRole) (*models.StoreMembership, error) {
	membership, err := s.memberships.GetMembership(ctx, userID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if err := access.RequireRole(membership.Role, minimum); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*StoreWithRoleDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	var store *models.Store
	var membership *models.StoreMembership

	// Store and owner membership land in one transaction so a failed
	// membership insert never leaves an orphan store behind.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := s.memberships.WithTx(tx)

		hasDefault, err := membershipRepo.HasDefault(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check default membership")
		}

		store, err = s.repo.CreateWithTx(tx, CreateStoreDTO{Name: name, Description: input.Description})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}

		// The creator's membership becomes the default only when the user
		// has none yet, so an existing default is never silently displaced.
		membership, err = membershipRepo.CreateMembership(ctx, store.ID, userID, enums.MemberRoleOwner, !hasDefault)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &StoreWithRoleDTO{
		StoreDTO:  *FromModel(store),
		UserRole:  membership.Role,
		IsDefault: membership.IsDefault,
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]StoreWithRoleDTO, error) {
	rows, err := s.memberships.ListUserStores(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user stores")
	}

	out := make([]StoreWithRoleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StoreWithRoleDTO{
			StoreDTO: StoreDTO{
				ID:          row.StoreID,
				Name:        row.StoreName,
				Description: row.StoreDescription,
				IsActive:    row.StoreIsActive,
			},
			UserRole:  row.Role,
			IsDefault: row.IsDefault,
		})
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, userID, storeID uuid.UUID) (*StoreWithRoleDTO, error) {
	membership, err := s.requireMembership(ctx, userID, storeID, enums.MemberRoleMember)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	return &StoreWithRoleDTO{
		StoreDTO:  *FromModel(store),
		UserRole:  membership.Role,
		IsDefault: membership.IsDefault,
	}, nil
}

func (s *service) Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	if _, err := s.requireMembership(ctx, userID, storeID, enums.MemberRoleAdmin); err != nil {
		return nil, err
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
		}
		store.Name = name
	}
	if input.Description != nil {
		store.Description = cloneStringPtr(input.Description)
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) ListUsers(ctx context.Context, userID, storeID uuid.UUID) ([]memberships.StoreUserDTO, error) {
	if _, err := s.requireMembership(ctx, userID, storeID, enums.MemberRoleMember); err != nil {
		return nil, err
	}

	users, err := s.memberships.ListStoreUsers(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store users")
	}
	return users, nil
}

func (s *service) AddUser(ctx context.Context, actorID, storeID uuid.UUID, input AddUserInput) (*memberships.StoreUserDTO, error) {
	if _, err := s.requireMembership(ctx, actorID, storeID, enums.MemberRoleAdmin); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	target, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	membership, err := s.memberships.CreateMembership(ctx, storeID, target.ID, input.Role, false)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member of this store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	return &memberships.StoreUserDTO{
		MembershipID: membership.ID,
		UserID:       target.ID,
		Username:     target.Username,
		Name:         target.Name,
		UserRole:     target.Role,
		Role:         membership.Role,
		IsDefault:    membership.IsDefault,
		JoinedAt:     membership.CreatedAt,
	}, nil
}

func (s *service) RemoveUser(ctx context.Context, actorID, storeID, targetUserID uuid.UUID) error {
	if _, err := s.requireMembership(ctx, actorID, storeID, enums.MemberRoleOwner); err != nil {
		return err
	}

	affected, err := s.memberships.DeleteMembership(ctx, storeID, targetUserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, storeID uuid.UUID) error {
	if _, err := s.requireMembership(ctx, userID, storeID, enums.MemberRoleMember); err != nil {
		return err
	}

	// Clear-then-set runs in one transaction so concurrent flips serialize
	// on the row locks and at most one membership stays flagged default.
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		membershipRepo := s.memberships.WithTx(tx)

		if err := membershipRepo.ClearDefault(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default membership")
		}
		if err := membershipRepo.SetDefault(ctx, userID, storeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default membership")
		}
		return nil
	})
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
