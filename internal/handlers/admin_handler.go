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

func RegisterAdmin(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.AdminInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		var caller *models.Principal
		if p, ok := helpers.PrincipalFrom(c); ok {
			caller = &p
		}

		session, err := as.Register(c.Request.Context(), caller, &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(session, "admin registered successfully"))
	}
}

func LoginAdmin(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.AdminLoginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		session, err := as.Login(c.Request.Context(), &in, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(session, "login successful"))
	}
}

func DashboardStats(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := as.DashboardStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

func AdminProfile(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		admin, err := as.Profile(c.Request.Context(), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(admin, ""))
	}
}

func UpdateAdminProfile(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var in models.AdminProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		admin, err := as.UpdateProfile(c.Request.Context(), p.ID, &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(admin, "profile updated"))
	}
}

func ListLoginLogs(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}
		filter := models.LoginLogFilter{Email: strings.TrimSpace(c.Query("email"))}
		if raw, present := c.GetQuery("success"); present {
			success, err := strconv.ParseBool(raw)
			if err != nil {
				badRequest(c, "invalid success parameter")
				return
			}
			filter.Success = &success
		}

		logs, total, err := as.LoginLogs(c.Request.Context(), filter, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(logs, page, limit, total))
	}
}

// Users -----------------------------------------------------------------------

func AdminListUsers(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}
		users, total, err := us.List(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(users, page, limit, total))
	}
}

func AdminGetUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		user, err := us.GetUser(c.Request.Context(), id, "")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, ""))
	}
}

func AdminUpdateUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		user, err := us.UpdateUser(c.Request.Context(), id, body, "")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "user updated"))
	}
}

func AdminDeleteUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := us.DeleteUser(c.Request.Context(), id, ""); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "user deleted successfully"))
	}
}

// MUAs ------------------------------------------------------------------------

func AdminListMUAs(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}
		muas, total, err := ms.List(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(muas, page, limit, total))
	}
}

func AdminUpdateMUA(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		mua, err := ms.Update(c.Request.Context(), id, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(mua, "mua updated"))
	}
}

func AdminDeleteMUA(ms *services.MUAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := ms.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "mua deleted successfully"))
	}
}

func RecomputeMUARating(ra *services.RatingAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		summary, err := ra.Recompute(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(summary, "rating recomputed"))
	}
}

// Bookings --------------------------------------------------------------------

func AdminListBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}
		bookings, total, err := bs.AdminList(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(bookings, page, limit, total))
	}
}

func AdminGetBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		booking, err := bs.AdminGet(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(booking, ""))
	}
}

func AdminUpdateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		if _, present := body["total_amount"]; present {
			badRequest(c, "total_amount cannot be changed")
			return
		}
		override, err := bookingOverrideFrom(body)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		booking, err := bs.Override(c.Request.Context(), p, id, override)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(booking, "booking updated"))
	}
}

func bookingOverrideFrom(body map[string]interface{}) (models.BookingOverride, error) {
	var o models.BookingOverride
	str := func(key string) (*string, error) {
		v, present := body[key]
		if !present {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, models.InvalidInput(key + " must be a string")
		}
		return &s, nil
	}

	status, err := str("status")
	if err != nil {
		return o, err
	}
	if status != nil {
		s := models.BookingStatus(*status)
		o.Status = &s
	}
	if o.Location, err = str("location"); err != nil {
		return o, err
	}
	if o.Notes, err = str("notes"); err != nil {
		return o, err
	}
	payment, err := str("payment_status")
	if err != nil {
		return o, err
	}
	if payment != nil {
		ps := models.PaymentStatus(*payment)
		o.PaymentStatus = &ps
	}
	return o, nil
}

func AdminDeleteBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := bs.AdminDelete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "booking deleted successfully"))
	}
}

// Reviews ---------------------------------------------------------------------

func AdminListReviews(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}
		reviews, total, err := rs.AdminList(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(reviews, page, limit, total))
	}
}

func AdminGetReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		review, err := rs.AdminGet(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(review, ""))
	}
}

func AdminModerateReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req struct {
			IsApproved *bool `json:"is_approved" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "is_approved is required")
			return
		}
		review, err := rs.SetApproval(c.Request.Context(), id, *req.IsApproved)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(review, "review updated"))
	}
}

func AdminDeleteReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := rs.AdminDelete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "review deleted successfully"))
	}
}
