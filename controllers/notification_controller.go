package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetNotifications - GET /api/notifications
func GetNotifications(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := inboxService().List(uid, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetUnreadCount - GET /api/notifications/unread-count
func GetUnreadCount(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := inboxService().UnreadCount(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkNotificationRead - PUT /api/notifications/:id/read
// Idempotent; re-reading an already-read notification is a success.
func MarkNotificationRead(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := inboxService().MarkRead(id, uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// MarkAllNotificationsRead - PUT /api/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	updated, err := inboxService().MarkAllRead(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification - DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := inboxService().Delete(id, uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type notifyPayload struct {
	EventKey   string            `json:"event_key" binding:"required"`
	RequestID  *uint             `json:"request_id"`
	EventData  map[string]string `json:"event_data"`
	Recipients []uint            `json:"recipients"`
}

// NotifyEvent - POST /api/notifications/notify
// Synchronous dispatch entry point for callers outside the lifecycle, e.g.
// a comment hook or a deadline sweeper. Superuser only.
func NotifyEvent(c *gin.Context) {
	var payload notifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_key is required"})
		return
	}

	inApp, emails := notificationService().Notify(payload.EventKey, payload.RequestID, payload.EventData, payload.Recipients)
	c.JSON(http.StatusOK, gin.H{"in_app_sent": inApp, "emails_sent": emails})
}
