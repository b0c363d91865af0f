package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/services"
)

func optionalFloat(c *gin.Context, key string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+key+" parameter")
		return nil, false
	}
	return &v, true
}

func ListMUAs(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		minPrice, ok := optionalFloat(c, "minPrice")
		if !ok {
			return
		}
		maxPrice, ok := optionalFloat(c, "maxPrice")
		if !ok {
			return
		}
		filter := models.MUAFilter{
			Location: strings.TrimSpace(c.Query("location")),
			Category: models.MUACategory(strings.TrimSpace(c.Query("category"))),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Search:   strings.TrimSpace(c.Query("search")),
		}

		muas, err := ms.Search(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(muas, ""))
	}
}

func GetMUA(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		mua, err := ms.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(mua, ""))
	}
}

func CreateMUA(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var mua models.MUA
		if err := c.ShouldBindJSON(&mua); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		created, err := ms.Create(c.Request.Context(), p, &mua)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "mua profile created successfully"))
	}
}
