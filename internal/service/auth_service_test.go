package service

import (
	"context"
	"testing"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/internal/core/ports/mocks"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (
	*AuthServiceImpl,
	*mocks.MockUserRepository,
	*mocks.MockHashService,
	*mocks.MockTokenService,
	*gomock.Controller,
) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService(userRepo, hashSvc, tokenSvc)
	return svc, userRepo, hashSvc, tokenSvc, ctrl
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{
		Username:    "beatsmith",
		Email:       "beatsmith@example.com",
		Password:    "StrongP@ss123",
		DisplayName: "Beat Smith",
	}

	userRepo.EXPECT().GetByUsername(ctx, req.Username).Return(nil, nil)
	hashSvc.EXPECT().Hash(req.Password).Return("$argon2id$hashed", nil)
	userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, req.Username, u.Username)
			assert.Equal(t, domain.UserStatusActive, u.Status)
			assert.Equal(t, "$argon2id$hashed", u.PasswordHash)
			return nil
		})

	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, req.DisplayName, user.DisplayName)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, userRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{Username: "taken", Password: "pw12345678"}

	userRepo.EXPECT().GetByUsername(ctx, req.Username).Return(&domain.User{ID: uuid.New()}, nil)

	user, err := svc.Register(ctx, req)
	assert.Nil(t, user)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo, hashSvc, tokenSvc, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "beatsmith",
		PasswordHash: "$argon2id$hashed",
		Status:       domain.UserStatusActive,
	}
	expiry := time.Now().Add(24 * time.Hour)

	userRepo.EXPECT().GetByUsername(ctx, user.Username).Return(user, nil)
	hashSvc.EXPECT().Verify("secret123", user.PasswordHash).Return(true, nil)
	tokenSvc.EXPECT().Generate(user.ID, user.Username).Return("jwt-token", expiry, nil)

	token, exp, err := svc.Login(ctx, user.Username, "secret123")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, userRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, _, err := svc.Login(ctx, "ghost", "whatever")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "beatsmith",
		PasswordHash: "$argon2id$hashed",
		Status:       domain.UserStatusActive,
	}

	userRepo.EXPECT().GetByUsername(ctx, user.Username).Return(user, nil)
	hashSvc.EXPECT().Verify("wrong", user.PasswordHash).Return(false, nil)

	_, _, err := svc.Login(ctx, user.Username, "wrong")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_SuspendedAccount(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "banned",
		PasswordHash: "$argon2id$hashed",
		Status:       domain.UserStatusSuspended,
	}

	userRepo.EXPECT().GetByUsername(ctx, user.Username).Return(user, nil)
	hashSvc.EXPECT().Verify("secret123", user.PasswordHash).Return(true, nil)

	_, _, err := svc.Login(ctx, user.Username, "secret123")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_004", appErr.Code)
}
