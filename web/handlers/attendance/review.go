package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	web "timekeep.io/timekeep/web/common"
)

type ApproveDTO struct {
	ApproverID string `json:"approverId" binding:"required"`
}

func (ep *Endpoint) Approve(c *gin.Context) {
	id := c.Param("id")

	var dto ApproveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	record, err := ep.svc.Approve(c.Request.Context(), id, dto.ApproverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(record))
}

type RejectDTO struct {
	ApproverID string `json:"approverId" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

func (ep *Endpoint) Reject(c *gin.Context) {
	id := c.Param("id")

	var dto RejectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	record, err := ep.svc.Reject(c.Request.Context(), id, dto.ApproverID, dto.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(record))
}

func (ep *Endpoint) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := ep.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}
