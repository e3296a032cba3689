package http

import (
	"net/http"
	"strings"

	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/response"
	"animov/pkg/s3"
	"animov/pkg/sessioncookie"
	"animov/services/auth/internal/entity"
	"animov/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase  usecase.AuthUseCase
	cookiePolicy sessioncookie.Policy
	logger       *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, cookiePolicy sessioncookie.Policy, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase:  authUseCase,
		cookiePolicy: cookiePolicy,
		logger:       logger,
	}
}

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"displayName" binding:"max=100"`
}

// SigninRequest accepts the email or username as login. email and username
// are accepted as aliases.
type SigninRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

func (r *SigninRequest) identifier() string {
	for _, v := range []string{r.Login, r.Email, r.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type UpdateMeRequest struct {
	DisplayName   *string                    `json:"displayName"`
	Preferences   *entity.PreferencesPatch   `json:"preferences"`
	Notifications *entity.NotificationsPatch `json:"notifications"`
	Privacy       *entity.PrivacyPatch       `json:"privacy"`
}

func clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

// Signup godoc
// @Summary      Create an account
// @Description  Registers a user, starts a session and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup data"
// @Success      201  {object}  entity.Auth
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	auth, err := h.authUseCase.Signup(c.Request.Context(), usecase.SignupInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	}, clientInfo(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	sessioncookie.Write(c.Writer, auth.Token, auth.ExpiresAt, h.cookiePolicy)
	response.Created(c, auth)
}

// Signin godoc
// @Summary      Sign in
// @Description  Verifies credentials, starts a session and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SigninRequest true "Credentials"
// @Success      200  {object}  entity.Auth
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	login := req.identifier()
	if login == "" {
		response.Fail(c, http.StatusBadRequest, "login is required")
		return
	}

	auth, err := h.authUseCase.Signin(c.Request.Context(), login, req.Password, clientInfo(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	sessioncookie.Write(c.Writer, auth.Token, auth.ExpiresAt, h.cookiePolicy)
	response.OK(c, auth)
}

// Signout godoc
// @Summary      Sign out
// @Description  Deletes the current session, if any, and clears the session cookie
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	if sessionID := c.GetString(middleware.ContextSessionID); sessionID != "" {
		if err := h.authUseCase.Signout(c.Request.Context(), sessionID); err != nil {
			response.Error(c, h.logger, err)
			return
		}
	}
	sessioncookie.Clear(c.Writer, h.cookiePolicy)
	response.OK(c, gin.H{"signedOut": true})
}

// Session godoc
// @Summary      Check the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Session
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := h.authUseCase.Session(c.Request.Context(), c.GetString(middleware.ContextSessionID))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, sess)
}

// Me godoc
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUseCase.GetMe(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, user)
}

// UpdateMe godoc
// @Summary      Update profile and settings
// @Description  Partial update of display name, preferences, notification and privacy settings
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateMeRequest true "Fields to change"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/me [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.authUseCase.UpdateMe(c.Request.Context(), middleware.UserID(c), entity.UserPatch{
		DisplayName:   req.DisplayName,
		Preferences:   req.Preferences,
		Notifications: req.Notifications,
		Privacy:       req.Privacy,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, user)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image (jpeg, png, webp or gif, at most 5 MB)"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /users/me/avatar [post]
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Avatar file is required")
		return
	}
	if file.Size > s3.MaxAvatarSize {
		response.Fail(c, http.StatusBadRequest, "Avatar must be at most 5 MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	user, err := h.authUseCase.UploadAvatar(c.Request.Context(), middleware.UserID(c), src, contentType)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, user)
}

// GetProfile godoc
// @Summary      Public profile
// @Description  Profile of another user; restricted by their privacy settings
// @Tags         users
// @Produce      json
// @Param        username path string true "Username"
// @Success      200  {object}  entity.Profile
// @Failure      404  {object}  map[string]string
// @Router       /users/{username} [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.authUseCase.GetProfile(c.Request.Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, profile)
}
