package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoshop/internal/auth"
	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/internal/testutil"
)

func TestRun_IsIdempotent(t *testing.T) {
	gormDB := testutil.NewDB(t)
	hasher := auth.NewPasswordHasher(4)
	admin := Admin{Email: "admin@shop.test", Password: "admin-pass", Name: "Admin", Phone: "1"}
	ctx := context.Background()

	first, err := Run(ctx, gormDB, hasher, admin)
	require.NoError(t, err)
	assert.True(t, first.AdminCreated)
	assert.Equal(t, len(sampleMechanics), first.Mechanics)
	assert.Equal(t, len(sampleParts), first.Parts)

	second, err := Run(ctx, gormDB, hasher, admin)
	require.NoError(t, err)
	assert.False(t, second.AdminCreated)
	assert.Zero(t, second.Mechanics)
	assert.Zero(t, second.Parts)

	user, err := repository.New(gormDB).Users.FindByEmail(ctx, "admin@shop.test")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.True(t, hasher.Verify("admin-pass", user.PasswordHash))
}

func TestRun_PromotesExistingUser(t *testing.T) {
	gormDB := testutil.NewDB(t)
	ctx := context.Background()
	repos := repository.New(gormDB)
	require.NoError(t, repos.Users.Create(ctx, &model.User{Name: "Jo", Email: "jo@shop.test", PasswordHash: "x", Phone: "1"}))

	result, err := Run(ctx, gormDB, auth.NewPasswordHasher(4), Admin{Email: "jo@shop.test"})
	require.NoError(t, err)
	assert.True(t, result.AdminPromoted)

	user, err := repos.Users.FindByEmail(ctx, "jo@shop.test")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestRun_NewAdminNeedsPassword(t *testing.T) {
	_, err := Run(context.Background(), testutil.NewDB(t), auth.NewPasswordHasher(4), Admin{Email: "nopass@shop.test"})
	assert.Error(t, err)
}
