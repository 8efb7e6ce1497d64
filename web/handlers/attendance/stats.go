package attendance

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/calendar"
	web "timekeep.io/timekeep/web/common"
)

func (ep *Endpoint) Statistics(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'userId' is required"))
		return
	}

	from, err := time.ParseInLocation("2006-01-02", c.Query("startDate"), calendar.ReferenceZone)
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'startDate' must be a yyyy-mm-dd date"))
		return
	}
	to, err := time.ParseInLocation("2006-01-02", c.Query("endDate"), calendar.ReferenceZone)
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'endDate' must be a yyyy-mm-dd date"))
		return
	}

	stats, err := ep.svc.GetStatistics(c.Request.Context(), userID, from, calendar.EndOfDay(to))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(stats))
}

func (ep *Endpoint) Today(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'userId' is required"))
		return
	}

	progress, err := ep.svc.GetTodayProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(progress))
}

func (ep *Endpoint) Projection(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'userId' is required"))
		return
	}

	projected, err := ep.svc.GetProjectedCompletionTime(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{
		"projectedCompletionTime": projected.Format("2006-01-02T15:04:05"),
	}))
}
