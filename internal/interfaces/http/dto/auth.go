package dto

import (
	"ui-forge-api/internal/domain/entity"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUserDTO 认证响应中的用户信息
type AuthUserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        *AuthUserDTO `json:"user"`
}

// ToAuthUserDTO 实体转认证用户 DTO
func ToAuthUserDTO(user *entity.User) *AuthUserDTO {
	return &AuthUserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}
