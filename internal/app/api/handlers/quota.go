package handlers

import (
	"net/http"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/usage"
	"github.com/Youngger9765/duotopia-sub006/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Teacher quota info
// @Description  Returns the current period's quota totals for a teacher
// @Tags         Quota
// @Produce      json
// @Param        teacher_id  query  string  true  "teacher id"
// @Success      200  {object}  response.APIResponse[usage.QuotaInfo]
// @Router       /api/v1/quota [get]
func ApiGetQuotaInfo(svc *usage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		teacherID := c.Query("teacher_id")
		if teacherID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing teacher_id"))
			return
		}
		info, err := svc.GetQuotaInfo(c.Request.Context(), teacherID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      Teacher usage summary
// @Description  Aggregates usage logs: daily totals, top students/assignments, per-feature breakdown
// @Tags         Quota
// @Produce      json
// @Param        teacher_id  query  string  true   "teacher id"
// @Param        start       query  string  false  "RFC3339 window start"
// @Param        end         query  string  false  "RFC3339 window end"
// @Success      200  {object}  response.APIResponse[usage.UsageSummary]
// @Router       /api/v1/usage/summary [get]
func ApiGetUsageSummary(svc *usage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		teacherID := c.Query("teacher_id")
		if teacherID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing teacher_id"))
			return
		}
		var start, end *time.Time
		if v := c.Query("start"); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid start"))
				return
			}
			start = &ts
		}
		if v := c.Query("end"); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid end"))
				return
			}
			end = &ts
		}
		summary, err := svc.GetUsageSummary(c.Request.Context(), teacherID, start, end)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(summary))
	}
}

func RegisterQuotaRoutes(r gin.IRouter, svc *usage.Service) {
	r.GET("/quota", ApiGetQuotaInfo(svc))
	r.GET("/usage/summary", ApiGetUsageSummary(svc))
}
