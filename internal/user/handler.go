package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymsched/internal/api"
	"gymsched/internal/auth"
	"gymsched/internal/policy"
)

type Handler struct {
	repo      Repository
	jwtSecret string
}

func NewHandler(repo Repository, jwtSecret string) *Handler {
	return &Handler{repo: repo, jwtSecret: jwtSecret}
}

// Register godoc
// @Summary      Register new client
// @Description  Creates a client account scoped to a gym and returns access and refresh tokens. Staff accounts are provisioned out of band.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  api.Response
// @Failure      400      {object}  api.Response
// @Failure      409      {object}  api.Response
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}

	exists, err := h.repo.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if exists {
		api.Fail(c, api.Conflict("email_taken", "email already registered"))
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		api.Fail(c, err)
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, passwordHash, policy.RoleClient, req.GymID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, user.GymID, h.jwtSecret)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Created(c, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  api.Response
// @Failure      401      {object}  api.Response
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}

	user, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "invalid_credentials", Message: "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, user.GymID, h.jwtSecret)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  api.Response
// @Failure      401      {object}  api.Response
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}

	accessToken, _, err := auth.RefreshAccessToken(req.RefreshToken, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "invalid_token", Message: "Invalid or expired refresh token"})
		return
	}

	api.OK(c, gin.H{"access_token": accessToken})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	user, err := h.repo.FindByID(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, api.NotFound("user_not_found", "user not found"))
		return
	}

	api.OK(c, user)
}
