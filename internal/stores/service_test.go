package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/internal/memberships"
	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

type stubStoreRepo struct {
	store     *models.Store
	created   *CreateStoreDTO
	updated   *models.Store
	createErr error
	findErr   error
	updateErr error
}

func (s *stubStoreRepo) CreateWithTx(_ *gorm.DB, dto CreateStoreDTO) (*models.Store, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	store := dto.ToModel()
	store.ID = uuid.New()
	return store, nil
}

func (s *stubStoreRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Store, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.store, nil
}

func (s *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = store
	return nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubMembershipsRepo struct {
	txScoped bool

	membership    *models.StoreMembership
	membershipErr error

	stores    []memberships.MembershipWithStore
	storesErr error

	created        *models.StoreMembership
	createdDefault bool
	createErr      error

	deleteAffected int64
	deleteErr      error

	clearCalls    int
	clearErr      error
	setCalls      int
	setDefaultErr error

	hasDefault    bool
	hasDefaultErr error

	users    []memberships.StoreUserDTO
	usersErr error
}

func (s *stubMembershipsRepo) WithTx(_ *gorm.DB) memberships.Repository {
	s.txScoped = true
	return s
}

func (s *stubMembershipsRepo) GetDefaultMembership(_ context.Context, _ uuid.UUID) (*models.StoreMembership, error) {
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) GetFirstMembership(_ context.Context, _ uuid.UUID) (*models.StoreMembership, error) {
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) ListUserStores(_ context.Context, _ uuid.UUID) ([]memberships.MembershipWithStore, error) {
	return s.stores, s.storesErr
}

func (s *stubMembershipsRepo) GetMembership(_ context.Context, _, _ uuid.UUID) (*models.StoreMembership, error) {
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) CreateMembership(_ context.Context, storeID, userID uuid.UUID, role enums.MemberRole, isDefault bool) (*models.StoreMembership, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdDefault = isDefault
	s.created = &models.StoreMembership{
		ID:        uuid.New(),
		UserID:    userID,
		StoreID:   storeID,
		Role:      role,
		IsDefault: isDefault,
		CreatedAt: time.Now(),
	}
	return s.created, nil
}

func (s *stubMembershipsRepo) DeleteMembership(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return s.deleteAffected, s.deleteErr
}

func (s *stubMembershipsRepo) ClearDefault(_ context.Context, _ uuid.UUID) error {
	s.clearCalls++
	return s.clearErr
}

func (s *stubMembershipsRepo) SetDefault(_ context.Context, _, _ uuid.UUID) error {
	s.setCalls++
	return s.setDefaultErr
}

func (s *stubMembershipsRepo) HasDefault(_ context.Context, _ uuid.UUID) (bool, error) {
	return s.hasDefault, s.hasDefaultErr
}

func (s *stubMembershipsRepo) ListStoreUsers(_ context.Context, _ uuid.UUID) ([]memberships.StoreUserDTO, error) {
	return s.users, s.usersErr
}

type stubUsersRepo struct {
	user *models.User
	err  error
}

func (s *stubUsersRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func newTestService(t *testing.T, repo *stubStoreRepo, membershipsRepo *stubMembershipsRepo, usersRepo *stubUsersRepo) Service {
	t.Helper()
	svc, err := NewService(repo, membershipsRepo, usersRepo, &stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func membershipWithRole(userID, storeID uuid.UUID, role enums.MemberRole) *models.StoreMembership {
	return &models.StoreMembership{
		ID:      uuid.New(),
		UserID:  userID,
		StoreID: storeID,
		Role:    role,
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, &stubMembershipsRepo{}, &stubUsersRepo{}, &stubTxRunner{}); err == nil {
		t.Fatal("expected error for nil store repository")
	}
	if _, err := NewService(&stubStoreRepo{}, nil, &stubUsersRepo{}, &stubTxRunner{}); err == nil {
		t.Fatal("expected error for nil memberships repository")
	}
	if _, err := NewService(&stubStoreRepo{}, &stubMembershipsRepo{}, nil, &stubTxRunner{}); err == nil {
		t.Fatal("expected error for nil users repository")
	}
	if _, err := NewService(&stubStoreRepo{}, &stubMembershipsRepo{}, &stubUsersRepo{}, nil); err == nil {
		t.Fatal("expected error for nil transaction runner")
	}
}

func TestCreateFirstStoreBecomesDefault(t *testing.T) {
	repo := &stubStoreRepo{}
	membershipsRepo := &stubMembershipsRepo{hasDefault: false}
	svc := newTestService(t, repo, membershipsRepo, &stubUsersRepo{})

	out, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "  Corner Bakery  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.created == nil || repo.created.Name != "Corner Bakery" {
		t.Fatalf("expected trimmed name, got %+v", repo.created)
	}
	if !membershipsRepo.createdDefault {
		t.Fatal("expected first store to become the default")
	}
	if out.UserRole != enums.MemberRoleOwner {
		t.Fatalf("expected owner role, got %s", out.UserRole)
	}
	if !out.IsDefault {
		t.Fatal("expected response to carry the default flag")
	}
	if !out.IsActive {
		t.Fatal("expected new store to be active")
	}
}

func TestCreateKeepsExistingDefault(t *testing.T) {
	membershipsRepo := &stubMembershipsRepo{hasDefault: true}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	out, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "Second Shop"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if membershipsRepo.createdDefault {
		t.Fatal("existing default must not be displaced")
	}
	if out.IsDefault {
		t.Fatal("second store must not report as default")
	}
}

func TestCreateStoreAndOwnerMembershipShareTransaction(t *testing.T) {
	repo := &stubStoreRepo{}
	membershipsRepo := &stubMembershipsRepo{}
	runner := &stubTxRunner{}
	svc, err := NewService(repo, membershipsRepo, &stubUsersRepo{}, runner)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "Corner Bakery"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("expected one transaction, got %d", runner.calls)
	}
	if !membershipsRepo.txScoped {
		t.Fatal("owner membership must be written on the transaction-scoped repository")
	}
	if repo.created == nil || membershipsRepo.created == nil {
		t.Fatal("expected store and membership writes")
	}
}

func TestCreateMembershipFailureSurfacesFromTransaction(t *testing.T) {
	repo := &stubStoreRepo{}
	membershipsRepo := &stubMembershipsRepo{createErr: errors.New("connection reset")}
	svc := newTestService(t, repo, membershipsRepo, &stubUsersRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "Corner Bakery"})
	expectCode(t, err, pkgerrors.CodeDependency)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubMembershipsRepo{}, &stubUsersRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "   "})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetByIDWithoutMembershipIsForbidden(t *testing.T) {
	membershipsRepo := &stubMembershipsRepo{membershipErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateRequiresAdmin(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(userID, storeID, enums.MemberRoleMember),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	name := "New Name"
	_, err := svc.Update(context.Background(), userID, storeID, UpdateStoreInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	desc := "old description"
	repo := &stubStoreRepo{
		store: &models.Store{ID: storeID, Name: "Old Name", Description: &desc, IsActive: true},
	}
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(userID, storeID, enums.MemberRoleAdmin),
	}
	svc := newTestService(t, repo, membershipsRepo, &stubUsersRepo{})

	name := "New Name"
	out, err := svc.Update(context.Background(), userID, storeID, UpdateStoreInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", out.Name)
	}
	if out.Description == nil || *out.Description != "old description" {
		t.Fatal("description must survive a name-only update")
	}
	if repo.updated == nil {
		t.Fatal("expected repository update call")
	}
}

func TestAddUserDuplicateMembershipConflicts(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	target := &models.User{ID: uuid.New(), Username: "casey", Name: "Casey", Role: enums.UserRoleUser}
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(actorID, storeID, enums.MemberRoleOwner),
		createErr:  errors.New(`duplicate key value violates unique constraint "idx_store_memberships_user_store"`),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{user: target})

	_, err := svc.AddUser(context.Background(), actorID, storeID, AddUserInput{UserID: target.ID, Role: enums.MemberRoleMember})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestAddUserUnknownTargetNotFound(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(actorID, storeID, enums.MemberRoleAdmin),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{err: gorm.ErrRecordNotFound})

	_, err := svc.AddUser(context.Background(), actorID, storeID, AddUserInput{UserID: uuid.New(), Role: enums.MemberRoleMember})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddUserRejectsInvalidRole(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(actorID, storeID, enums.MemberRoleAdmin),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	_, err := svc.AddUser(context.Background(), actorID, storeID, AddUserInput{UserID: uuid.New(), Role: enums.MemberRole("manager")})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestAddUserReturnsRosterEntry(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	target := &models.User{ID: uuid.New(), Username: "casey", Name: "Casey", Role: enums.UserRoleUser}
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(actorID, storeID, enums.MemberRoleAdmin),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{user: target})

	out, err := svc.AddUser(context.Background(), actorID, storeID, AddUserInput{UserID: target.ID, Role: enums.MemberRoleAdmin})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if out.UserID != target.ID || out.Username != "casey" {
		t.Fatalf("unexpected roster entry: %+v", out)
	}
	if out.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin membership, got %s", out.Role)
	}
	if out.IsDefault {
		t.Fatal("invited membership must not become the default")
	}
}

func TestRemoveUserRequiresOwner(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership:     membershipWithRole(actorID, storeID, enums.MemberRoleAdmin),
		deleteAffected: 1,
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	err := svc.RemoveUser(context.Background(), actorID, storeID, uuid.New())
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestRemoveUserMissingMembershipNotFound(t *testing.T) {
	actorID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership:     membershipWithRole(actorID, storeID, enums.MemberRoleOwner),
		deleteAffected: 0,
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	err := svc.RemoveUser(context.Background(), actorID, storeID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetDefaultClearsPreviousFlagInOneTransaction(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(userID, storeID, enums.MemberRoleMember),
	}
	runner := &stubTxRunner{}
	svc, err := NewService(&stubStoreRepo{}, membershipsRepo, &stubUsersRepo{}, runner)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.SetDefault(context.Background(), userID, storeID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("expected one transaction, got %d", runner.calls)
	}
	if !membershipsRepo.txScoped {
		t.Fatal("default flip must run on the transaction-scoped repository")
	}
	if membershipsRepo.clearCalls != 1 || membershipsRepo.setCalls != 1 {
		t.Fatalf("expected one clear and one set, got %d and %d",
			membershipsRepo.clearCalls, membershipsRepo.setCalls)
	}
}

func TestSetDefaultClearFailureStopsFlip(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership: membershipWithRole(userID, storeID, enums.MemberRoleMember),
		clearErr:   errors.New("connection reset"),
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	err := svc.SetDefault(context.Background(), userID, storeID)
	expectCode(t, err, pkgerrors.CodeDependency)
	if membershipsRepo.setCalls != 0 {
		t.Fatal("failed clear must abort before the new default is flagged")
	}
}

func TestSetDefaultMissingMembershipNotFound(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	membershipsRepo := &stubMembershipsRepo{
		membership:    membershipWithRole(userID, storeID, enums.MemberRoleMember),
		setDefaultErr: gorm.ErrRecordNotFound,
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	err := svc.SetDefault(context.Background(), userID, storeID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestListMineMapsMemberships(t *testing.T) {
	userID := uuid.New()
	desc := "best coffee"
	membershipsRepo := &stubMembershipsRepo{
		stores: []memberships.MembershipWithStore{
			{
				StoreID:          uuid.New(),
				StoreName:        "Espresso Bar",
				StoreDescription: &desc,
				StoreIsActive:    true,
				Role:             enums.MemberRoleOwner,
				IsDefault:        true,
			},
			{
				StoreID:       uuid.New(),
				StoreName:     "Side Hustle",
				StoreIsActive: true,
				Role:          enums.MemberRoleMember,
			},
		},
	}
	svc := newTestService(t, &stubStoreRepo{}, membershipsRepo, &stubUsersRepo{})

	out, err := svc.ListMine(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(out))
	}
	if out[0].Name != "Espresso Bar" || !out[0].IsDefault || out[0].UserRole != enums.MemberRoleOwner {
		t.Fatalf("unexpected first entry: %+v", out[0])
	}
	if out[1].IsDefault {
		t.Fatal("non-default membership must not report as default")
	}
}
