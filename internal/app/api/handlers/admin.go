package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/usage"
	"github.com/Youngger9765/duotopia-sub006/pkg/config"
	"github.com/Youngger9765/duotopia-sub006/pkg/response"

	"github.com/gin-gonic/gin"
)

type createSubscriptionBody struct {
	TeacherID     string `json:"teacher_id" binding:"required"`
	PlanName      string `json:"plan_name" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"` // YYYY-MM-DD
	PaymentMethod string `json:"payment_method"`
	AmountPaid    *int64 `json:"amount_paid"`
}

// @Summary      Create subscription period
// @Description  Opens a new billing window from a payment event
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request  body  createSubscriptionBody  true  "payment event"
// @Router       /api/v1/admin/subscriptions [post]
func ApiCreateSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body createSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		start, err := time.Parse("2006-01-02", body.StartDate)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid start_date, expected YYYY-MM-DD"))
			return
		}
		period, calc, err := svc.CreateFirstSubscription(c.Request.Context(), &subscription.CreateSubscriptionRequest{
			TeacherID:     body.TeacherID,
			PlanName:      body.PlanName,
			StartDate:     start,
			PaymentMethod: body.PaymentMethod,
			AmountPaid:    body.AmountPaid,
		})
		if err != nil {
			if errors.Is(err, config.ErrPlanNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"period": period, "pricing": calc}))
	}
}

type renewSubscriptionBody struct {
	TeacherID     string `json:"teacher_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// @Summary      Renew subscription
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Router       /api/v1/admin/subscriptions/renew [post]
func ApiRenewSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body renewSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		period, err := svc.Renew(c.Request.Context(), body.TeacherID, body.PaymentMethod)
		if err != nil {
			if errors.Is(err, subscription.ErrNoActivePeriod) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "no active period to renew"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(period))
	}
}

type cancelSubscriptionBody struct {
	TeacherID string `json:"teacher_id" binding:"required"`
	Reason    string `json:"reason"`
}

// @Summary      Cancel subscription
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Router       /api/v1/admin/subscriptions/cancel [post]
func ApiCancelSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body cancelSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		period, err := svc.Cancel(c.Request.Context(), body.TeacherID, body.Reason)
		if err != nil {
			if errors.Is(err, subscription.ErrNoActivePeriod) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "no active period to cancel"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(period))
	}
}

type topUpBody struct {
	OrganizationID string  `json:"organization_id" binding:"required"`
	Points         float64 `json:"points" binding:"required"`
	Description    string  `json:"description"`
}

// @Summary      Top up organization points
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Router       /api/v1/admin/organizations/topup [post]
func ApiTopUpOrganization(svc *orgpoints.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body topUpBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		org, err := svc.TopUp(c.Request.Context(), body.OrganizationID, body.Points, body.Description)
		if err != nil {
			if errors.Is(err, orgpoints.ErrOrganizationNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "organization not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(org))
	}
}

// @Summary      Organization points info
// @Tags         Admin
// @Produce      json
// @Router       /api/v1/admin/organizations/{id}/points [get]
func ApiGetOrganizationPoints(svc *usage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.GetOrganizationPointsInfo(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, orgpoints.ErrOrganizationNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "organization not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      List usage logs
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Router       /api/v1/admin/usage/logs [post]
func ApiScanUsageLogs(svc *usage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usage.ScanUsageLogsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanUsageLogs(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, subs *subscription.Service, op *orgpoints.Service, usg *usage.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(subs))
	r.POST("/subscriptions/renew", ApiRenewSubscription(subs))
	r.POST("/subscriptions/cancel", ApiCancelSubscription(subs))
	r.POST("/organizations/topup", ApiTopUpOrganization(op))
	r.GET("/organizations/:id/points", ApiGetOrganizationPoints(usg))
	r.POST("/usage/logs", ApiScanUsageLogs(usg))
}
