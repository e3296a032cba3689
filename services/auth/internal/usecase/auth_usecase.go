package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/models"
	"animov/services/auth/internal/entity"
	"animov/services/auth/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = apperr.Kind(apperr.ErrUnauthorized, "invalid credentials")
	ErrAccountDisabled    = apperr.Kind(apperr.ErrForbidden, "account is deactivated")
	ErrEmailTaken         = apperr.Kind(apperr.ErrConflict, "user with this email already exists")
	ErrUsernameTaken      = apperr.Kind(apperr.ErrConflict, "username already taken")
	ErrStorageDisabled    = apperr.Kind(apperr.ErrUpstream, "avatar storage is not configured")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// SessionStore is the write side of pkg/session.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration, userAgent, ip string) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AvatarStorage is satisfied by *s3.Client.
type AvatarStorage interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
	DeleteFile(key string) error
	KeyFor(url string) string
}

// ClientInfo describes where a signin came from.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type SignupInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

type AuthUseCase interface {
	Signup(ctx context.Context, in SignupInput, client ClientInfo) (*entity.Auth, error)
	Signin(ctx context.Context, login, password string, client ClientInfo) (*entity.Auth, error)
	Signout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (*entity.Session, error)
	GetMe(ctx context.Context, userID string) (*entity.User, error)
	UpdateMe(ctx context.Context, userID string, patch entity.UserPatch) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*entity.User, error)
	GetProfile(ctx context.Context, viewerID, username string) (*entity.Profile, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	sessions   SessionStore
	jwtService *jwt.Service
	storage    AvatarStorage
	sessionTTL time.Duration
	logger     *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	sessions SessionStore,
	jwtService *jwt.Service,
	storage AvatarStorage,
	sessionTTL time.Duration,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		sessions:   sessions,
		jwtService: jwtService,
		storage:    storage,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (uc *authUseCase) Signup(ctx context.Context, in SignupInput, client ClientInfo) (*entity.Auth, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Kind(apperr.ErrValidation, "username must be 3-30 letters, digits or underscores")
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, persistent.ErrUserNotFound) {
		return nil, err
	}
	if _, err := uc.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, persistent.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &entity.User{
		Email:         email,
		Username:      username,
		Password:      string(hashedPassword),
		DisplayName:   displayName,
		Preferences:   models.DefaultPreferences(),
		Notifications: models.DefaultNotificationSettings(),
		Privacy:       models.DefaultPrivacySettings(),
		IsActive:      true,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("User %s signed up", user.ID)
	return uc.startSession(ctx, user, client)
}

func (uc *authUseCase) Signin(ctx context.Context, login, password string, client ClientInfo) (*entity.Auth, error) {
	login = strings.TrimSpace(login)

	var user *entity.User
	var err error
	if strings.Contains(login, "@") {
		user, err = uc.userRepo.GetByEmail(ctx, login)
	} else {
		user, err = uc.userRepo.GetByUsername(ctx, login)
	}
	if errors.Is(err, persistent.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return uc.startSession(ctx, user, client)
}

func (uc *authUseCase) startSession(ctx context.Context, user *entity.User, client ClientInfo) (*entity.Auth, error) {
	sess, err := uc.sessions.Create(ctx, user.ID, uc.sessionTTL, client.UserAgent, client.IP)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtService.GenerateToken(user.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		uc.sessions.Delete(ctx, sess.ID)
		return nil, err
	}

	user.Password = ""
	return &entity.Auth{User: user, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (uc *authUseCase) Signout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *authUseCase) Session(ctx context.Context, sessionID string) (*entity.Session, error) {
	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &entity.Session{Authenticated: true, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}, nil
}

func (uc *authUseCase) GetMe(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (uc *authUseCase) UpdateMe(ctx context.Context, userID string, patch entity.UserPatch) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(user, patch); err != nil {
		return nil, err
	}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func applyPatch(user *entity.User, patch entity.UserPatch) error {
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" || len(name) > 100 {
			return apperr.Kind(apperr.ErrValidation, "displayName must be 1-100 characters")
		}
		user.DisplayName = name
	}

	if p := patch.Preferences; p != nil {
		if p.Theme != nil {
			switch *p.Theme {
			case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
				user.Preferences.Theme = *p.Theme
			default:
				return apperr.Kind(apperr.ErrValidation, "theme must be light, dark or system")
			}
		}
		if p.Language != nil {
			user.Preferences.Language = strings.TrimSpace(*p.Language)
		}
		if p.FavoriteGenres != nil {
			user.Preferences.FavoriteGenres = p.FavoriteGenres
		}
		if p.DefaultContentType != nil {
			if *p.DefaultContentType != "" && !content.Type(*p.DefaultContentType).Valid() {
				return apperr.Kind(apperr.ErrValidation, "unknown content type: "+*p.DefaultContentType)
			}
			user.Preferences.DefaultContentType = *p.DefaultContentType
		}
	}

	if n := patch.Notifications; n != nil {
		setBool(&user.Notifications.FriendRequests, n.FriendRequests)
		setBool(&user.Notifications.FriendAccepted, n.FriendAccepted)
		setBool(&user.Notifications.CommentReplies, n.CommentReplies)
		setBool(&user.Notifications.CommentLikes, n.CommentLikes)
	}

	if p := patch.Privacy; p != nil {
		if p.ProfileVisibility != nil {
			switch *p.ProfileVisibility {
			case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
				user.Privacy.ProfileVisibility = *p.ProfileVisibility
			default:
				return apperr.Kind(apperr.ErrValidation, "profileVisibility must be public, friends or private")
			}
		}
		setBool(&user.Privacy.ShowLists, p.ShowLists)
		setBool(&user.Privacy.ShowActivity, p.ShowActivity)
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (uc *authUseCase) UploadAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*entity.User, error) {
	if uc.storage == nil {
		return nil, ErrStorageDisabled
	}
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, apperr.Kind(apperr.ErrValidation, "avatar must be a jpeg, png, webp or gif image")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	avatarURL, err := uc.storage.UploadFile(key, file, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar for %s: %v", userID, err)
		return nil, apperr.Kind(apperr.ErrUpstream, "failed to upload avatar")
	}

	previous := user.AvatarURL
	user.AvatarURL = avatarURL
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" {
		if oldKey := uc.storage.KeyFor(previous); oldKey != "" {
			if err := uc.storage.DeleteFile(oldKey); err != nil {
				uc.logger.Warn("Failed to delete previous avatar %s: %v", oldKey, err)
			}
		}
	}

	user.Password = ""
	return user, nil
}

func (uc *authUseCase) GetProfile(ctx context.Context, viewerID, username string) (*entity.Profile, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, persistent.ErrUserNotFound
	}

	profile := &entity.Profile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}

	visible, err := uc.canSee(ctx, viewerID, user)
	if err != nil {
		return nil, err
	}
	if !visible {
		profile.Restricted = true
		return profile, nil
	}

	createdAt := user.CreatedAt
	profile.MemberSince = &createdAt
	profile.ShowLists = user.Privacy.ShowLists
	profile.ShowActivity = user.Privacy.ShowActivity
	return profile, nil
}

func (uc *authUseCase) canSee(ctx context.Context, viewerID string, owner *entity.User) (bool, error) {
	if viewerID == owner.ID {
		return true, nil
	}
	switch owner.Privacy.ProfileVisibility {
	case models.VisibilityPrivate:
		return false, nil
	case models.VisibilityFriends:
		if viewerID == "" {
			return false, nil
		}
		return uc.userRepo.AreFriends(ctx, viewerID, owner.ID)
	default:
		return true, nil
	}
}

func (uc *authUseCase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return uc.sessions.DeleteExpired(ctx)
}
