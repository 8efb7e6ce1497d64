package attendance

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/core"
	web "timekeep.io/timekeep/web/common"
)

type ClockInDTO struct {
	UserID   string             `json:"userId" binding:"required"`
	At       *web.LocalDateTime `json:"at,omitempty"`
	Notes    string             `json:"notes,omitempty"`
	Location string             `json:"location,omitempty"`
}

func (ep *Endpoint) ClockIn(c *gin.Context) {
	var dto ClockInDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	input := core.ClockInInput{
		Notes:    dto.Notes,
		Location: dto.Location,
	}
	if dto.At != nil && !dto.At.IsZero() {
		input.At = &dto.At.Time
	}

	record, err := ep.svc.ClockIn(c.Request.Context(), dto.UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(record))
}

type ClockOutDTO struct {
	At *web.LocalDateTime `json:"at,omitempty"`
}

func (ep *Endpoint) ClockOut(c *gin.Context) {
	id := c.Param("id")

	// The body is optional; an absent one means clock out now.
	var dto ClockOutDTO
	if err := c.ShouldBindJSON(&dto); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var at *time.Time
	if dto.At != nil && !dto.At.IsZero() {
		at = &dto.At.Time
	}

	record, err := ep.svc.ClockOut(c.Request.Context(), id, at)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(record))
}
