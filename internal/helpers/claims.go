package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/models"
)

const (
	principalKey   = "principal"
	accessTokenKey = "access_token"
)

func SetPrincipal(c *gin.Context, p models.Principal, accessToken string) {
	c.Set(principalKey, p)
	c.Set(accessTokenKey, accessToken)
}

// PrincipalFrom returns the caller set by the auth middleware.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

func AccessTokenFrom(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}
