package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/dbtest"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/models"
	"animov/pkg/session"
	"animov/services/auth/internal/entity"
	"animov/services/auth/internal/repo/persistent"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	uploaded map[string]string
	deleted  []string
	err      error
}

func (f *fakeStorage) UploadFile(key string, file io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, _ := io.ReadAll(file)
	if f.uploaded == nil {
		f.uploaded = map[string]string{}
	}
	f.uploaded[key] = string(body)
	return "https://cdn.test/bucket/" + key, nil
}

func (f *fakeStorage) DeleteFile(key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) KeyFor(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/bucket/")
}

type fixture struct {
	db      *gorm.DB
	uc      AuthUseCase
	jwt     *jwt.Service
	storage *fakeStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	jwtService := jwt.NewService("test-secret")
	storage := &fakeStorage{}
	uc := NewAuthUseCase(
		persistent.NewUserRepository(db),
		session.NewStore(db, nil),
		jwtService,
		storage,
		time.Hour,
		logger.NewWithOptions(io.Discard, "info", false),
	)
	return &fixture{db: db, uc: uc, jwt: jwtService, storage: storage}
}

func (f *fixture) signup(t *testing.T, username string) *entity.Auth {
	t.Helper()
	auth, err := f.uc.Signup(context.Background(), SignupInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "correct horse",
	}, ClientInfo{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	return auth
}

func TestSignup_IssuesSessionToken(t *testing.T) {
	f := newFixture(t)

	auth := f.signup(t, "spike")
	assert.Equal(t, "spike", auth.User.Username)
	assert.Equal(t, "spike", auth.User.DisplayName)
	assert.Empty(t, auth.User.Password)
	assert.True(t, auth.User.Notifications.FriendRequests)

	claims, err := f.jwt.ValidateToken(auth.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, claims.UserID)

	sess, err := f.uc.Session(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, auth.User.ID, sess.UserID)
	assert.WithinDuration(t, auth.ExpiresAt, sess.ExpiresAt, time.Second)
}

func TestSignup_Conflicts(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "faye")
	ctx := context.Background()

	_, err := f.uc.Signup(ctx, SignupInput{Email: "FAYE@example.com", Username: "other", Password: "password1"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.uc.Signup(ctx, SignupInput{Email: "new@example.com", Username: "Faye", Password: "password1"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignup_RejectsBadUsername(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Signup(context.Background(), SignupInput{Email: "x@example.com", Username: "no spaces", Password: "password1"}, ClientInfo{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSignin(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "jet")
	ctx := context.Background()

	byName, err := f.uc.Signin(ctx, "jet", "correct horse", ClientInfo{})
	require.NoError(t, err)
	assert.NotEmpty(t, byName.Token)

	byEmail, err := f.uc.Signin(ctx, "JET@example.com", "correct horse", ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, byName.Token, byEmail.Token)

	_, err = f.uc.Signin(ctx, "jet", "wrong", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.uc.Signin(ctx, "nobody", "correct horse", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignin_Deactivated(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "vicious")
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", auth.User.ID).Update("is_active", false).Error)

	_, err := f.uc.Signin(context.Background(), "vicious", "correct horse", ClientInfo{})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSignout_EndsSession(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "edward")
	claims, err := f.jwt.ValidateToken(auth.Token)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.uc.Signout(ctx, claims.SessionID))

	_, err = f.uc.Session(ctx, claims.SessionID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestSignout_TokenRejectedByMiddleware(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "edward")
	claims, err := f.jwt.ValidateToken(auth.Token)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(f.jwt, session.NewStore(f.db, nil)))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	call := func() int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call())
	require.NoError(t, f.uc.Signout(context.Background(), claims.SessionID))
	assert.Equal(t, http.StatusUnauthorized, call())
}

func TestUpdateMe_PartialPatch(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "ein")
	ctx := context.Background()

	dark := models.ThemeDark
	private := models.VisibilityPrivate
	off := false
	user, err := f.uc.UpdateMe(ctx, auth.User.ID, entity.UserPatch{
		Preferences:   &entity.PreferencesPatch{Theme: &dark},
		Notifications: &entity.NotificationsPatch{CommentLikes: &off},
		Privacy:       &entity.PrivacyPatch{ProfileVisibility: &private},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, user.Preferences.Theme)
	assert.Equal(t, "en", user.Preferences.Language)
	assert.False(t, user.Notifications.CommentLikes)
	assert.True(t, user.Notifications.CommentReplies)
	assert.Equal(t, models.VisibilityPrivate, user.Privacy.ProfileVisibility)
	assert.Equal(t, "ein", user.DisplayName)

	reloaded, err := f.uc.GetMe(ctx, auth.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, reloaded.Preferences.Theme)
}

func TestUpdateMe_Validation(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "julia")
	ctx := context.Background()

	neon := models.Theme("neon")
	_, err := f.uc.UpdateMe(ctx, auth.User.ID, entity.UserPatch{Preferences: &entity.PreferencesPatch{Theme: &neon}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	blank := "   "
	_, err = f.uc.UpdateMe(ctx, auth.User.ID, entity.UserPatch{DisplayName: &blank})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	podcast := "podcast"
	_, err = f.uc.UpdateMe(ctx, auth.User.ID, entity.UserPatch{Preferences: &entity.PreferencesPatch{DefaultContentType: &podcast}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "gren")
	ctx := context.Background()

	first, err := f.uc.UploadAvatar(ctx, auth.User.ID, bytes.NewBufferString("one"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.AvatarURL, ".png"))

	second, err := f.uc.UploadAvatar(ctx, auth.User.ID, bytes.NewBufferString("two"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)
	assert.Equal(t, []string{f.storage.KeyFor(first.AvatarURL)}, f.storage.deleted)
	assert.Len(t, f.storage.uploaded, 2)
}

func TestUploadAvatar_Errors(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "punch")
	ctx := context.Background()

	_, err := f.uc.UploadAvatar(ctx, auth.User.ID, bytes.NewBufferString("x"), "application/pdf")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f.storage.err = errors.New("s3 down")
	_, err = f.uc.UploadAvatar(ctx, auth.User.ID, bytes.NewBufferString("x"), "image/png")
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	noStorage := NewAuthUseCase(persistent.NewUserRepository(f.db), session.NewStore(f.db, nil), f.jwt, nil, time.Hour, logger.New())
	_, err = noStorage.UploadAvatar(ctx, auth.User.ID, bytes.NewBufferString("x"), "image/png")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestGetProfile_Privacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner").User
	friend := f.signup(t, "friend").User
	stranger := f.signup(t, "stranger").User

	low, high := models.OrderedPair(owner.ID, friend.ID)
	require.NoError(t, f.db.Create(&models.Friendship{UserLowID: low, UserHighID: high, RequesterID: owner.ID, Status: models.FriendshipAccepted}).Error)

	public, err := f.uc.GetProfile(ctx, "", "owner")
	require.NoError(t, err)
	assert.False(t, public.Restricted)
	assert.NotNil(t, public.MemberSince)
	assert.True(t, public.ShowLists)

	friendsOnly := models.VisibilityFriends
	_, err = f.uc.UpdateMe(ctx, owner.ID, entity.UserPatch{Privacy: &entity.PrivacyPatch{ProfileVisibility: &friendsOnly}})
	require.NoError(t, err)

	asFriend, err := f.uc.GetProfile(ctx, friend.ID, "owner")
	require.NoError(t, err)
	assert.False(t, asFriend.Restricted)

	asStranger, err := f.uc.GetProfile(ctx, stranger.ID, "owner")
	require.NoError(t, err)
	assert.True(t, asStranger.Restricted)
	assert.Nil(t, asStranger.MemberSince)
	assert.Equal(t, "owner", asStranger.Username)

	anonymous, err := f.uc.GetProfile(ctx, "", "owner")
	require.NoError(t, err)
	assert.True(t, anonymous.Restricted)

	private := models.VisibilityPrivate
	_, err = f.uc.UpdateMe(ctx, owner.ID, entity.UserPatch{Privacy: &entity.PrivacyPatch{ProfileVisibility: &private}})
	require.NoError(t, err)

	asFriend, err = f.uc.GetProfile(ctx, friend.ID, "owner")
	require.NoError(t, err)
	assert.True(t, asFriend.Restricted)

	self, err := f.uc.GetProfile(ctx, owner.ID, "owner")
	require.NoError(t, err)
	assert.False(t, self.Restricted)

	_, err = f.uc.GetProfile(ctx, "", "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	auth := f.signup(t, "andy")
	require.NoError(t, f.db.Create(&models.Session{UserID: auth.User.ID, ExpiresAt: time.Now().UTC().Add(-time.Minute)}).Error)

	n, err := f.uc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
