package services

import (
	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// NotificationService manages in-app notifications. Delivery failures are
// logged and swallowed: a notification must never fail the action that
// produced it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates an in-app notification for the user.
func (s *NotificationService) Notify(userID uint, title, subtitle, detail, link string) {
	n := models.Notification{
		UserID:   userID,
		Title:    title,
		Subtitle: subtitle,
		Detail:   detail,
		Link:     link,
	}
	if err := s.db.Create(&n).Error; err != nil {
		logger.Error().Err(err).Uint("user_id", userID).Msg("failed to create notification")
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	if err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, response.NewServerError("could not list notifications")
	}
	return notifications, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, response.NewServerError("could not count notifications")
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return response.NewServerError("could not update notification")
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("notification not found")
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return response.NewServerError("could not update notifications")
	}
	return nil
}
