package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/middleware"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/services"
)

func RegisterUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		res, err := u.Register(c.Request.Context(), &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(res, "registration successful, check your email to confirm"))
	}
}

// LoginUser keeps the tokens in http-only cookies and also returns them for
// clients that send a bearer header instead.
func LoginUser(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		res, err := u.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		middleware.SetSessionCookies(c, res.AccessToken, res.ExpiresIn, res.RefreshToken, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"token":      res.AccessToken,
			"expires_in": res.ExpiresIn,
			"user":       res.User,
		}, "login successful"))
	}
}

func Me(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), p.ID, helpers.AccessTokenFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, ""))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "logged out successfully"))
	}
}
