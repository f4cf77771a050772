package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
	"road_treatment/internal/testutil"
)

func TestUsers_CreateAuthenticateAndList(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserInput{
		Email:    "New.Driver@Example.com",
		Password: "s3cret",
		Role:     "Driver",
		TMCID:    &f.TMC.ID,
		Name:     "New Driver",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.driver@example.com", u.Email)
	assert.Equal(t, models.RoleDriver, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "new.driver@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "new.driver@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.TypeUnauthorized))
	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret")
	assert.True(t, apperrors.Is(err, apperrors.TypeUnauthorized))

	_, err = svc.Create(ctx, CreateUserInput{Email: "new.driver@example.com", Password: "x", Role: models.RoleDriver})
	assert.True(t, apperrors.Is(err, apperrors.TypeConflict))

	_, err = svc.Create(ctx, CreateUserInput{Email: "x@example.com", Password: "x", Role: "superuser"})
	assert.True(t, apperrors.Is(err, apperrors.TypeValidation))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for _, v := range users {
		if v.ID == u.ID {
			require.NotNil(t, v.TMCName)
			assert.Equal(t, f.TMC.Name, *v.TMCName)
		}
		if v.ID == f.Admin.ID {
			assert.Nil(t, v.TMCName)
		}
	}
}

func TestUsers_UpdateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Update(ctx, f.Driver.ID, UpdateUserInput{
		Email: "driver@example.com",
		Role:  models.RoleDispatcher,
		TMCID: &f.TMC.ID,
		Name:  "Promoted",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDispatcher, u.Role)
	assert.Equal(t, "Promoted", u.Name)

	_, err = svc.Update(ctx, f.Driver.ID, UpdateUserInput{Email: "admin@example.com", Role: models.RoleDriver})
	assert.True(t, apperrors.Is(err, apperrors.TypeConflict))

	_, err = svc.Update(ctx, 999, UpdateUserInput{Email: "a@b.c", Role: models.RoleDriver})
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))

	require.NoError(t, svc.Delete(ctx, f.Driver.ID))
	assert.True(t, apperrors.Is(svc.Delete(ctx, f.Driver.ID), apperrors.TypeNotFound))
}
