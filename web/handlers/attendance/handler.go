// Package attendance exposes the attendance engine over HTTP.
package attendance

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/core"
	web "timekeep.io/timekeep/web/common"
)

type Endpoint struct {
	svc *core.Service
}

func Register(r *gin.RouterGroup, svc *core.Service) {
	endpoint := &Endpoint{svc: svc}

	r.POST("/attendance/clock-in", endpoint.ClockIn)
	r.POST("/attendance/:id/clock-out", endpoint.ClockOut)
	r.POST("/attendance/:id/breaks", endpoint.AddBreak)
	r.PUT("/attendance/:id/breaks/:breakId/end", endpoint.EndBreak)
	r.POST("/attendance/:id/approve", endpoint.Approve)
	r.POST("/attendance/:id/reject", endpoint.Reject)
	r.DELETE("/attendance/:id", endpoint.Delete)

	r.GET("/attendance/:id", endpoint.Get)
	r.POST("/attendance/search", endpoint.Search)
	r.GET("/attendance/active", endpoint.Active)
	r.GET("/attendance/pending", endpoint.Pending)

	r.GET("/attendance/statistics", endpoint.Statistics)
	r.GET("/attendance/today", endpoint.Today)
	r.GET("/attendance/projection", endpoint.Projection)
}

// respondError maps engine errors onto HTTP statuses. Validation and state
// failures are 422 so clients can distinguish them from malformed requests.
func respondError(c *gin.Context, err error) {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, web.NewErrorResponse(err.Error()))
	case errors.Is(err, core.ErrConflict):
		c.JSON(http.StatusConflict, web.NewErrorResponse(err.Error()))
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, &web.ErrorResponse{
			Message:  ve.Error(),
			Errors:   ve.Errors,
			Warnings: ve.Warnings,
		})
	case errors.Is(err, core.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, web.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
	}
}
