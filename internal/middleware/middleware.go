package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	refreshCookieTTL   = 3600 * 24 * 30
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func StructuredLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logger.Info("HTTP Request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// ErrorHandler logs errors attached with c.Error and answers with a generic
// 500 if the handler did not write a response itself.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		requestID := c.GetString("request_id")
		for _, e := range c.Errors {
			logger.Error("Request error",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(e.Err),
			)
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "internal server error",
				"request_id": requestID,
			})
		}
	}
}

// PrincipalResolver maps a verified user id to a principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID, accessToken string) (models.Principal, error)
}

// TokenRefresher trades a refresh token for a new session.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, kind models.ErrorKind, msg string) {
	c.AbortWithStatusJSON(status, helpers.CodedErrorResponse(string(kind), msg))
}

// AuthMiddleware authenticates Supabase users. The token comes from the
// Authorization header or the access_token cookie; an expired cookie session
// is refreshed once via the refresh_token cookie. The role is read from the
// caller's profile, never from the token.
func AuthMiddleware(verifier helpers.TokenVerifier, resolver PrincipalResolver, refresher TokenRefresher, secureCookies bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		fromCookie := false
		if token == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
				token, fromCookie = cookie, true
			}
		}
		if token == "" {
			abort(c, http.StatusUnauthorized, models.KindUnauthorized, "access token required")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil && fromCookie && refresher != nil {
			token, claims, err = refreshSession(c, verifier, refresher, secureCookies, logger)
		}
		if err != nil {
			abort(c, http.StatusUnauthorized, models.KindUnauthorized, "invalid or expired token")
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), claims.Subject, token)
		if err != nil {
			switch models.KindOf(err) {
			case models.KindNotFound, models.KindForbidden:
				logger.Info("authenticated user has no usable profile",
					zap.String("user_id", claims.Subject),
					zap.Error(err),
				)
				abort(c, http.StatusForbidden, models.KindForbidden, "access denied")
			default:
				logger.Error("failed to resolve principal", zap.String("user_id", claims.Subject), zap.Error(err))
				abort(c, http.StatusInternalServerError, models.KindInternal, "internal server error")
			}
			return
		}

		helpers.SetPrincipal(c, principal, token)
		c.Next()
	}
}

func refreshSession(c *gin.Context, verifier helpers.TokenVerifier, refresher TokenRefresher, secure bool, logger *zap.Logger) (string, *helpers.AccessClaims, error) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		return "", nil, helpers.ErrInvalidToken
	}
	res, err := refresher.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil || res == nil || res.AccessToken == "" {
		logger.Info("token refresh failed", zap.Error(err))
		return "", nil, helpers.ErrInvalidToken
	}
	claims, err := verifier.Verify(res.AccessToken)
	if err != nil {
		return "", nil, err
	}

	SetSessionCookies(c, res.AccessToken, res.ExpiresIn, res.RefreshToken, secure)
	logger.Info("token refreshed", zap.String("user_id", claims.Subject))
	return res.AccessToken, claims, nil
}

func SetSessionCookies(c *gin.Context, accessToken string, expiresIn int, refreshToken string, secure bool) {
	c.SetCookie(AccessTokenCookie, accessToken, expiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, refreshCookieTTL, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

// AdminAuthenticator maps an admin bearer token to a principal.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// AdminAuth requires an active administrator; with superOnly it requires SUPER_ADMIN.
func AdminAuth(auth AdminAuthenticator, superOnly bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, models.KindUnauthorized, "access token required")
			return
		}
		if !authorizeAdmin(c, auth, token, superOnly, logger) {
			return
		}
		c.Next()
	}
}

// OptionalAdminAuth resolves an admin when a bearer token is present and lets
// anonymous requests through. Admin registration relies on it for bootstrap.
func OptionalAdminAuth(auth AdminAuthenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" && !authorizeAdmin(c, auth, token, false, logger) {
			return
		}
		c.Next()
	}
}

func authorizeAdmin(c *gin.Context, auth AdminAuthenticator, token string, superOnly bool, logger *zap.Logger) bool {
	principal, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		switch kind := models.KindOf(err); kind {
		case models.KindUnauthorized:
			abort(c, http.StatusUnauthorized, kind, models.MessageOf(err))
		case models.KindForbidden:
			abort(c, http.StatusForbidden, kind, models.MessageOf(err))
		default:
			logger.Error("admin authentication failed", zap.Error(err))
			abort(c, http.StatusInternalServerError, models.KindInternal, "internal server error")
		}
		return false
	}
	if superOnly && principal.Role != models.RoleSuperAdmin {
		abort(c, http.StatusForbidden, models.KindForbidden, "super admin privileges required")
		return false
	}
	helpers.SetPrincipal(c, principal, token)
	return true
}
