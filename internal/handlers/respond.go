package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
)

const maxPageLimit = 100

var kindStatus = map[models.ErrorKind]int{
	models.KindUnauthorized:       http.StatusUnauthorized,
	models.KindNotFound:           http.StatusNotFound,
	models.KindForbidden:          http.StatusForbidden,
	models.KindInvalidInput:       http.StatusBadRequest,
	models.KindInvalidTransition:  http.StatusConflict,
	models.KindPreconditionFailed: http.StatusPreconditionFailed,
	models.KindConflict:           http.StatusConflict,
	models.KindInternal:           http.StatusInternalServerError,
}

// respondError writes err with the status of its kind. Internal errors are
// attached to the context for ErrorHandler to log and never leak their cause.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, helpers.CodedErrorResponse(string(kind), models.MessageOf(err)))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, helpers.CodedErrorResponse(string(models.KindInvalidInput), msg))
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := helpers.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, helpers.CodedErrorResponse(string(models.KindUnauthorized), "unauthorized"))
	}
	return p, ok
}

// pagination reads page and limit (defaults 1 and 10) and returns the offset.
func pagination(c *gin.Context) (page, limit, offset int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		badRequest(c, "invalid page parameter")
		return 0, 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		badRequest(c, "invalid limit parameter")
		return 0, 0, 0, false
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit, true
}

func pathID(c *gin.Context) (string, bool) {
	id := helpers.StringTrim(c.Param("id"))
	if id == "" {
		badRequest(c, "id is required")
		return "", false
	}
	return id, true
}
