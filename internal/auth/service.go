package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/internal/stores"
	"github.com/maajod/maajod-backend/internal/users"
	pkgauth "github.com/maajod/maajod-backend/pkg/auth"
	"github.com/maajod/maajod-backend/pkg/config"
	"github.com/maajod/maajod-backend/pkg/db"
	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
	"github.com/maajod/maajod-backend/pkg/security"
)

// Wrong username and wrong password share one message so login cannot be
// used to enumerate accounts.
const invalidCredentialsMessage = "invalid username or password"

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type storesLister interface {
	ListMine(ctx context.Context, userID uuid.UUID) ([]stores.StoreWithRoleDTO, error)
}

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
}

type service struct {
	users       userRepository
	stores      storesLister
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	timeNow     func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	StoresService  storesLister
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.StoresService == nil {
		return nil, fmt.Errorf("stores service is required")
	}
	return &service{
		users:       params.UserRepo,
		stores:      params.StoresService,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		timeNow:     time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	name := strings.TrimSpace(req.Name)
	if username == "" || req.Password == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username, password and name are required")
	}

	role := enums.UserRoleUser
	if req.Role != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	hash := req.Password
	if !security.IsHashed(hash) {
		var err error
		hash, err = security.HashPassword(req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username is already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	userStores, err := s.stores.ListMine(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &MeResponse{
		User:           *users.FromModel(user),
		Stores:         userStores,
		DefaultStoreID: defaultStoreID(userStores),
	}, nil
}

func (s *service) buildAuthResponse(ctx context.Context, user *models.User) (*AuthResponse, error) {
	userStores, err := s.stores.ListMine(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.timeNow(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		Token:          token,
		User:           *users.FromModel(user),
		Stores:         userStores,
		DefaultStoreID: defaultStoreID(userStores),
	}, nil
}

// defaultStoreID picks the flagged default, falling back to the earliest
// membership the lister returned.
func defaultStoreID(list []stores.StoreWithRoleDTO) *uuid.UUID {
	for _, s := range list {
		if s.IsDefault {
			id := s.ID
			return &id
		}
	}
	if len(list) > 0 {
		id := list[0].ID
		return &id
	}
	return nil
}
