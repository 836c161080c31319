package handler

import (
	"github.com/gin-gonic/gin"

	"ui-forge-api/internal/config"
	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
	"ui-forge-api/internal/interfaces/http/dto"
	"ui-forge-api/pkg/logger"
	"ui-forge-api/pkg/utils"
)

const refreshCookiePath = "/v1/auth/refresh"

// AuthHandler 认证处理器
type AuthHandler struct {
	jwtManager *utils.JWTManager
	jwtCfg     config.JWTConfig
	userRepo   repository.UserRepository
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(jwtCfg config.JWTConfig, userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		jwtManager: utils.NewJWTManager(jwtCfg.Secret, jwtCfg.Issuer),
		jwtCfg:     jwtCfg,
		userRepo:   userRepo,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	exists, err := h.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to check email existence", err)
		dto.InternalError(c, "registration failed")
		return
	}
	if exists {
		dto.BadRequest(c, "email already registered")
		return
	}

	user := entity.NewUser(req.Email, req.Name)
	if err := user.SetPassword(req.Password); err != nil {
		logger.Error(ctx, "failed to hash password", err)
		dto.InternalError(c, "registration failed")
		return
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		logger.Error(ctx, "failed to create user", err)
		dto.InternalError(c, "registration failed")
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, h.jwtCfg.Expiration, h.jwtCfg.RefreshExpiration)
	if err != nil {
		dto.InternalError(c, "user created but failed to generate tokens")
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)

	dto.Created(c, &dto.AuthResponse{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   int(h.jwtCfg.Expiration.Seconds()),
		User:        dto.ToAuthUserDTO(user),
	})
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to get user", err)
		dto.InternalError(c, "login failed")
		return
	}

	if user == nil || !user.CheckPassword(req.Password) {
		dto.Unauthorized(c, "invalid email or password")
		return
	}

	if err := h.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn(ctx, "failed to update last login time", "error", err, "user_id", user.ID)
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, h.jwtCfg.Expiration, h.jwtCfg.RefreshExpiration)
	if err != nil {
		dto.InternalError(c, "failed to generate tokens")
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)

	dto.Success(c, &dto.AuthResponse{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   int(h.jwtCfg.Expiration.Seconds()),
		User:        dto.ToAuthUserDTO(user),
	})
}

// RefreshToken 用 Cookie 中的 RefreshToken 换取新的 AccessToken
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		dto.Unauthorized(c, "missing refresh token")
		return
	}

	claims, err := h.jwtManager.ParseToken(refreshToken)
	if err != nil {
		dto.Unauthorized(c, "invalid refresh token")
		return
	}
	if claims.Type != "refresh" {
		dto.Unauthorized(c, "invalid token type")
		return
	}

	accessToken, err := h.jwtManager.GenerateToken(claims.UserID, "access", h.jwtCfg.Expiration)
	if err != nil {
		dto.InternalError(c, "failed to generate access token")
		return
	}

	dto.Success(c, gin.H{
		"access_token": accessToken,
		"expires_in":   int(h.jwtCfg.Expiration.Seconds()),
	})
}

// Logout 登出并清除 RefreshToken Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("refresh_token", "", -1, refreshCookiePath, "", false, true)
	dto.Success(c, gin.H{"message": "logged out"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie("refresh_token", token, int(h.jwtCfg.RefreshExpiration.Seconds()), refreshCookiePath, "", false, true)
}
