package services

import (
	"time"

	"gorm.io/gorm"

	"lab-request-api/models"
)

// InboxItem is one notification row joined with its event metadata.
type InboxItem struct {
	NotificationID uint       `json:"notification_id"`
	EventTypeID    uint       `json:"event_type_id"`
	EventName      string     `json:"event_name"`
	Message        string     `json:"message"`
	LinkURL        string     `json:"link_url"`
	RequestID      *uint      `json:"request_id,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// InboxService is the recipient-facing read/unread surface over persisted
// notifications. All operations are scoped to the owning user.
type InboxService struct {
	db *gorm.DB
}

func NewInboxService(db *gorm.DB) *InboxService {
	return &InboxService{db: db}
}

const inboxMaxLimit = 100

// List returns the user's notifications in reverse-chronological order.
func (s *InboxService) List(userID uint, unreadOnly bool, limit int) ([]InboxItem, error) {
	if limit <= 0 || limit > inboxMaxLimit {
		limit = 50
	}

	q := s.db.Table("notifications AS n").
		Select("n.notification_id, n.event_type_id, net.event_name, n.message, n.link_url, n.request_id, n.read_at, n.created_at").
		Joins("JOIN notification_event_types net ON net.event_type_id = n.event_type_id").
		Where("n.user_id = ?", userID)

	if unreadOnly {
		q = q.Where("n.read_at IS NULL")
	}

	var items []InboxItem
	err := q.Order("n.created_at DESC").Limit(limit).Scan(&items).Error
	return items, err
}

// MarkRead stamps one notification as read. Idempotent; a notification that
// does not belong to the user is a no-op, not an error.
func (s *InboxService) MarkRead(notificationID, userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now()).Error
}

// MarkAllRead stamps every unread notification of the user with one timestamp.
func (s *InboxService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}

// Delete hard-deletes a notification owned by the user.
func (s *InboxService) Delete(notificationID, userID uint) error {
	return s.db.
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{}).Error
}

// UnreadCount returns the user's unread notification count.
func (s *InboxService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
