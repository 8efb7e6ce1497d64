package attendance

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/core/models"
	web "timekeep.io/timekeep/web/common"
)

type AddBreakDTO struct {
	Type            string `json:"type" binding:"required,oneof=lunch short_break extended_break"`
	DurationMinutes *int   `json:"durationMinutes,omitempty" binding:"omitempty,min=1"`
}

// BreakResultDTO pairs the updated record with the advisory warnings the
// mutation raised.
type BreakResultDTO struct {
	Record   *models.AttendanceRecord `json:"record"`
	Warnings []string                 `json:"warnings,omitempty"`
}

func (ep *Endpoint) AddBreak(c *gin.Context) {
	id := c.Param("id")

	var dto AddBreakDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var duration *time.Duration
	if dto.DurationMinutes != nil {
		d := time.Duration(*dto.DurationMinutes) * time.Minute
		duration = &d
	}

	record, warnings, err := ep.svc.AddBreak(c.Request.Context(), id, models.BreakType(dto.Type), duration)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(BreakResultDTO{Record: record, Warnings: warnings}))
}

type EndBreakDTO struct {
	At *web.LocalDateTime `json:"at,omitempty"`
}

func (ep *Endpoint) EndBreak(c *gin.Context) {
	id := c.Param("id")
	breakID := c.Param("breakId")

	var dto EndBreakDTO
	if err := c.ShouldBindJSON(&dto); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var at *time.Time
	if dto.At != nil && !dto.At.IsZero() {
		at = &dto.At.Time
	}

	record, warnings, err := ep.svc.EndBreak(c.Request.Context(), id, breakID, at)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(BreakResultDTO{Record: record, Warnings: warnings}))
}
