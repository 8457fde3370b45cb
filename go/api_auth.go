package shroomserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	apierrors "github.com/shroombros/shroom-api/internal/shared/errors"
)

// AuthAPI exposes login, logout and the current user.
type AuthAPI struct {
	service authports.Service
}

func NewAuthAPI(service authports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /v1/auth/login
// Exchanges email and password for a bearer token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		User:      fromUser(result.User),
	})
}

// Post /v1/auth/logout
// Revokes the session behind the presented token
func (api *AuthAPI) Logout(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized)
		return
	}
	if err := api.service.Logout(c.Request.Context(), principal.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, fromUser(principal.User))
}
