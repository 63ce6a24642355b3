package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/consultbook/internal/logging"
)

// NewRouter wires middlewares and routes:
//
//	POST /auth/check-email
//	POST /auth/signin
//	POST /auth/resend-otp
//	POST /auth/verify-otp
//	PUT  /users/:id         (Bearer token)
func NewRouter(logger logging.Logger, h *Handler, secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), requestLoggerMiddleware(logger), gin.Recovery())

	auth := r.Group("/auth")
	auth.POST("/check-email", h.CheckEmail)
	auth.POST("/signin", h.SignIn)
	auth.POST("/resend-otp", h.ResendOtp)
	auth.POST("/verify-otp", h.VerifyOtp)

	users := r.Group("/users", bearerAuthMiddleware(secret))
	users.PUT("/:id", h.UpdateUser)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
