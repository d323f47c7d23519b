package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=trainer trainee"`
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Role                domain.Role `json:"role"`
	CreatedAt           time.Time   `json:"createdAt"`
	TraineeIDs          []string    `json:"traineeIds,omitempty"`
	TrainerID           *string     `json:"trainerId,omitempty"`
	CountingMethod      string      `json:"countingMethod,omitempty"`
	CalendarSyncEnabled bool        `json:"calendarSyncEnabled"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:                  user.ID.Hex(),
		Name:                user.Name,
		Email:               user.Email,
		Role:                user.Role,
		CreatedAt:           user.CreatedAt,
		CountingMethod:      user.CountingMethod,
		CalendarSyncEnabled: user.CalendarSyncEnabled,
	}
	for _, id := range user.TraineeIDs {
		resp.TraineeIDs = append(resp.TraineeIDs, id.Hex())
	}
	if user.TrainerID != nil {
		hex := user.TrainerID.Hex()
		resp.TrainerID = &hex
	}
	return resp
}

// --- Handler Methods ---

// Register creates a new user account (trainer or trainee).
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, "Email address is already registered")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: toUserResponse(user)})
}
