package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	web "timekeep.io/timekeep/web/common"
)

func (ep *Endpoint) Get(c *gin.Context) {
	record, err := ep.svc.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(record))
}

// Active returns the user's open record, or null when the user is not
// clocked in.
func (ep *Endpoint) Active(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Query param 'userId' is required"))
		return
	}

	record, err := ep.svc.FindActiveEntry(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(record))
}

// Pending lists active records old enough to look like forgotten clock-outs.
func (ep *Endpoint) Pending(c *gin.Context) {
	records, err := ep.svc.FindPendingEntries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(records))
}
