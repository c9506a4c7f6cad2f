package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-calendar/internal/auth"
)

func (h *Handler) createExport(c *gin.Context, who auth.Identity) {
	exp, err := h.exports.Export(c.Request.Context(), who.UserID, calendarName(who))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newExportResponse(*exp))
}

func (h *Handler) listExports(c *gin.Context, who auth.Identity) {
	exports, err := h.exports.List(c.Request.Context(), who.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]exportResponse, 0, len(exports))
	for _, e := range exports {
		resp = append(resp, newExportResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteExports(c *gin.Context, who auth.Identity) {
	if err := h.exports.DeleteAll(c.Request.Context(), who.UserID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
