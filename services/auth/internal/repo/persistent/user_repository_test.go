package persistent

import (
	"context"
	"testing"

	"animov/pkg/dbtest"
	"animov/pkg/models"
	"animov/services/auth/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email, username string) *entity.User {
	return &entity.User{
		Email:         email,
		Username:      username,
		Password:      "hash",
		DisplayName:   username,
		Preferences:   models.DefaultPreferences(),
		Notifications: models.DefaultNotificationSettings(),
		Privacy:       models.DefaultPrivacySettings(),
		IsActive:      true,
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	user := newUser("naruto@example.com", "Naruto")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "NARUTO@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "naruto")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, models.ThemeSystem, byName.Preferences.Theme)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("a@example.com", "alpha")))
	err := repo.Create(ctx, newUser("a@example.com", "beta"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	user := newUser("b@example.com", "bravo")
	require.NoError(t, repo.Create(ctx, user))

	user.DisplayName = "Bravo"
	user.Preferences.Theme = models.ThemeDark
	user.Preferences.FavoriteGenres = []string{"Action", "Drama"}
	user.Privacy.ProfileVisibility = models.VisibilityFriends
	user.Notifications.CommentLikes = false
	require.NoError(t, repo.Update(ctx, user))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", stored.DisplayName)
	assert.Equal(t, models.ThemeDark, stored.Preferences.Theme)
	assert.Equal(t, []string{"Action", "Drama"}, stored.Preferences.FavoriteGenres)
	assert.Equal(t, models.VisibilityFriends, stored.Privacy.ProfileVisibility)
	assert.False(t, stored.Notifications.CommentLikes)
	assert.True(t, stored.Notifications.CommentReplies)
}

func TestUserRepository_Update_Missing(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))

	err := repo.Update(context.Background(), &entity.User{ID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_AreFriends(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := dbtest.CreateUser(t, db, "alice")
	b := dbtest.CreateUser(t, db, "bob")
	c := dbtest.CreateUser(t, db, "carol")

	low, high := models.OrderedPair(a.ID, b.ID)
	require.NoError(t, db.Create(&models.Friendship{UserLowID: low, UserHighID: high, RequesterID: a.ID, Status: models.FriendshipAccepted}).Error)
	low, high = models.OrderedPair(a.ID, c.ID)
	require.NoError(t, db.Create(&models.Friendship{UserLowID: low, UserHighID: high, RequesterID: c.ID, Status: models.FriendshipPending}).Error)

	ok, err := repo.AreFriends(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AreFriends(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
