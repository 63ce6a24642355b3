package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/services"
	"github.com/dmitrijs2005/consultbook/internal/server/users"
)

type Handler struct {
	users  *services.UserService
	logger logging.Logger
}

func NewHandler(us *services.UserService, logger logging.Logger) *Handler {
	return &Handler{users: us, logger: logger}
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required,len=6,numeric"`
}

type profileRequest struct {
	Email        string `json:"email" binding:"omitempty,email"`
	Name         string `json:"name" binding:"required"`
	Gender       string `json:"gender" binding:"required,oneof=male female other"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	TimeOfBirth  string `json:"timeOfBirth" binding:"required,datetime=3:04 PM"`
	PlaceOfBirth string `json:"placeOfBirth" binding:"required"`
	Password     string `json:"password"`
}

// userResponse is the user record as the client reads it.
type userResponse struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
	Gender       string `json:"gender,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	TimeOfBirth  string `json:"timeOfBirth,omitempty"`
	PlaceOfBirth string `json:"placeOfBirth,omitempty"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		Name:         u.Profile.Name,
		Gender:       u.Profile.Gender,
		DateOfBirth:  u.Profile.DateOfBirth,
		TimeOfBirth:  u.Profile.TimeOfBirth,
		PlaceOfBirth: u.Profile.PlaceOfBirth,
	}
}

func authPayload(res *services.AuthResult) gin.H {
	return gin.H{"token": res.Token, "user": toUserResponse(res.User)}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.Error(c.Request.Context(), "request failed", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

// CheckEmail answers 201 for accounts with a password and 200 otherwise.
func (h *Handler) CheckEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	registered, err := h.users.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if registered {
		c.JSON(http.StatusCreated, gin.H{"isRegistered": true, "message": "Email is registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isRegistered": false, "message": "Email is not registered"})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.users.SignIn(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Signed in", "data": authPayload(res)})
	}
}

func (h *Handler) ResendOtp(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.users.IssueOtp(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, services.ErrMailerFailed):
		h.logger.Warn(c.Request.Context(), "otp delivery failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not send the code, try again later"})
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
	}
}

func (h *Handler) VerifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.users.VerifyOtp(c.Request.Context(), req.Email, req.Otp)
	switch {
	case errors.Is(err, services.ErrInvalidOtp):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired code"})
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Verified", "data": authPayload(res)})
	}
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), services.ProfileInput{
		Email:        req.Email,
		Name:         req.Name,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		TimeOfBirth:  req.TimeOfBirth,
		PlaceOfBirth: req.PlaceOfBirth,
		Password:     req.Password,
	})
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only update your own profile"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, services.ErrValidation):
		badRequest(c, err)
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "data": toUserResponse(u)})
	}
}
