package casdoor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

type fakeDirectory struct {
	users map[string]*casdoorsdk.User
	calls int
}

func (f *fakeDirectory) GetUserByUserId(userId string) (*casdoorsdk.User, error) {
	f.calls++
	return f.users[userId], nil
}

func TestMapRole(t *testing.T) {
	tests := map[string]models.UserRole{
		"Teacher":       models.RoleMentor,
		"mentor":        models.RoleMentor,
		"instructor":    models.RoleMentor,
		"ADMIN":         models.RoleAdmin,
		"administrator": models.RoleAdmin,
		"student":       models.RoleLearner,
		"something":     models.RoleLearner,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapRole(in), in)
	}
}

func TestPrimaryRole(t *testing.T) {
	assert.Equal(t, models.RoleLearner, PrimaryRole(&casdoorsdk.User{}))
	assert.Equal(t, models.RoleAdmin, PrimaryRole(&casdoorsdk.User{IsAdmin: true}))
	assert.Equal(t, models.RoleMentor, PrimaryRole(&casdoorsdk.User{
		Roles: []*casdoorsdk.Role{{Name: "teacher"}, {Name: "student"}},
	}))
	assert.Equal(t, models.RoleAdmin, PrimaryRole(&casdoorsdk.User{
		Roles: []*casdoorsdk.Role{{Name: "student"}, {Name: "admin"}},
	}))
}

func TestUserCasdoor_GetByIDCachesResult(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dir := &fakeDirectory{users: map[string]*casdoorsdk.User{
		"u-1": {Id: "u-1", DisplayName: "Ada Lovelace", Email: "ada@example.com", Avatar: "https://cdn/ada.png"},
	}}
	repo := NewUserDirectory(dir, client)
	ctx := context.Background()

	user, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, models.RoleLearner, user.Role)
	require.NotNil(t, user.AvatarURL)

	require.Eventually(t, func() bool { return mr.Exists("user:id:u-1") }, time.Second, 10*time.Millisecond)

	again, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, user.Email, again.Email)
	assert.Equal(t, 1, dir.calls)
}

func TestUserCasdoor_GetByIDNotFound(t *testing.T) {
	repo := NewUserDirectory(&fakeDirectory{users: map[string]*casdoorsdk.User{}}, nil)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, repositories.IsNotFoundError(err))
}
