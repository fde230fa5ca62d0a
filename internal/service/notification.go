package service

import (
	"context"
	"fmt"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
)

const notificationListLimit = 50

// NotificationService reads and updates a user's in-app notifications
type NotificationService struct {
	notificationRepo domain.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo domain.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the user's most recent notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}
