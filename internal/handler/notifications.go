package handler

import (
	"net/http"
	"strconv"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct{ svc service.NotificationService }

func NewNotificationsHandler(svc service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

func (h *NotificationsHandler) ListUnread(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.ListUnread(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *NotificationsHandler) MarkAsRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkAsRead(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationsHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// Scan re-evaluates every active variant on demand.
func (h *NotificationsHandler) Scan(c *gin.Context) {
	n, err := h.svc.CheckAllStockLevels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scanned": n})
}
