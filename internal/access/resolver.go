package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

// StoreContext is the authorized tenant scope for a request.
type StoreContext struct {
	StoreID uuid.UUID
	Role    enums.MemberRole
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error)
	GetDefaultMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error)
	GetFirstMembership(ctx context.Context, userID uuid.UUID) (*models.StoreMembership, error)
}

// Resolver maps an authenticated user plus an optional requested store id
// into an authorized store context. Pure lookups; it never mutates
// membership state.
type Resolver struct {
	memberships membershipsRepository
}

// NewResolver builds a Resolver over the provided memberships repository.
func NewResolver(memberships membershipsRepository) (*Resolver, error) {
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &Resolver{memberships: memberships}, nil
}

// NormalizeStoreID treats the literal strings clients send for "no store"
// as absent.
func NormalizeStoreID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "undefined" || trimmed == "null" {
		return ""
	}
	return trimmed
}

// Resolve determines the effective store for the user. An explicit store id
// must match a membership; with none supplied the user's default membership
// wins, then the earliest membership by creation time. A user with zero
// memberships cannot acquire a store context.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, requestedStoreID string) (*StoreContext, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	requested := NormalizeStoreID(requestedStoreID)
	if requested != "" {
		storeID, err := uuid.Parse(requested)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
		}
		return r.authorize(ctx, userID, storeID)
	}

	membership, err := r.memberships.GetDefaultMembership(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup default store")
		}
		membership, err = r.memberships.GetFirstMembership(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "store context required")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup first store")
		}
	}

	return &StoreContext{StoreID: membership.StoreID, Role: membership.Role}, nil
}

func (r *Resolver) authorize(ctx context.Context, userID, storeID uuid.UUID) (*StoreContext, error) {
	membership, err := r.memberships.GetMembership(ctx, userID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store membership")
	}
	return &StoreContext{StoreID: membership.StoreID, Role: membership.Role}, nil
}

// RequireRole enforces the owner > admin > member hierarchy for
// store-management operations.
func RequireRole(role, required enums.MemberRole) error {
	if !required.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInternal, "invalid required role")
	}
	if !role.AtLeast(required) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient store role")
	}
	return nil
}
