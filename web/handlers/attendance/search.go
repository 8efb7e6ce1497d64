package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
	web "timekeep.io/timekeep/web/common"
)

type SearchParams struct {
	UserID    string        `json:"userId" binding:"required"`
	StartDate *web.DateOnly `json:"startDate,omitempty"`
	EndDate   *web.DateOnly `json:"endDate,omitempty"`
	Status    *string       `json:"status,omitempty" binding:"omitempty,oneof=active completed approved rejected"`
}

func (ep *Endpoint) Search(c *gin.Context) {
	var searchParams SearchParams
	if err := c.ShouldBindJSON(&searchParams); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	// limit and offset ride on the query string.
	limit := 100
	offset := 0
	if val, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = val
	}
	if val, err := strconv.Atoi(c.Query("offset")); err == nil {
		offset = val
	}

	filter := core.RecordFilter{
		Limit:  limit,
		Offset: offset,
	}
	if searchParams.StartDate != nil && !searchParams.StartDate.IsZero() {
		from := calendar.StartOfDay(searchParams.StartDate.Time)
		filter.From = &from
	}
	if searchParams.EndDate != nil && !searchParams.EndDate.IsZero() {
		to := calendar.EndOfDay(searchParams.EndDate.Time)
		filter.To = &to
	}
	if searchParams.Status != nil {
		status := models.AttendanceStatus(*searchParams.Status)
		filter.Status = &status
	}

	records, total, err := ep.svc.FindByUserID(c.Request.Context(), searchParams.UserID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(records, total))
}
