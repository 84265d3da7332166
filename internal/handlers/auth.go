package handlers

import (
	"net/http"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	tokens  *auth.Tokens
	authSvc *service.AuthService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.Tokens, authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{tokens: tokens, authSvc: authSvc}
}

// SignUp godoc
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SignUpRequest  true  "Account"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{Token: token, User: userToResponse(user)})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, User: userToResponse(user)})
}

func userToResponse(u dom.UserState) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
