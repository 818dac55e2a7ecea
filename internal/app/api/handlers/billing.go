package handlers

import (
	"errors"
	"net/http"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/billing"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/quota"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Record billable usage
// @Description  Meters one billable event against the teacher quota or the organization point pool
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Param        request  body  billing.UsageRequest  true  "billable event"
// @Success      200  {object}  response.APIResponse[billing.UsageResult]
// @Router       /api/v1/usage [post]
func ApiRecordUsage(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.UsageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.TeacherID == "" || req.ClassroomID == "" || req.FeatureType == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "teacher_id, classroom_id and feature_type are required"))
			return
		}
		if !req.UnitType.Valid() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid unit_type"))
			return
		}

		result, err := svc.RecordUsage(c.Request.Context(), &req)
		if err != nil {
			var exceeded *quota.QuotaExceededError
			switch {
			case errors.As(err, &exceeded):
				// the payload lets the client render an upgrade prompt
				c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeQuotaExceeded, exceeded))
			case errors.Is(err, subscription.ErrNoActivePeriod):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeQuotaExceeded, "no active subscription period"))
			case errors.Is(err, billing.ErrClassroomNotFound):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "classroom not found"))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

func RegisterBillingRoutes(r gin.IRouter, svc *billing.Service) {
	r.POST("/usage", ApiRecordUsage(svc))
}
