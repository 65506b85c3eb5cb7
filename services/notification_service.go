package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/logger"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// RealtimePusher delivers a notification to a connected client
type RealtimePusher interface {
	SendToUser(userID primitive.ObjectID, n models.Notification) error
}

// NotificationService records notifications and fans them out to the
// realtime hub, push and email. Delivery beyond the stored record is best
// effort.
type NotificationService struct {
	notifications repositories.NotificationStore
	users         repositories.UserStore
	realtime      RealtimePusher
	push          PushSender
	mail          Mailer
	now           func() time.Time
}

func NewNotificationService(notifications repositories.NotificationStore, users repositories.UserStore) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		now:           time.Now,
	}
}

func (s *NotificationService) WithRealtime(p RealtimePusher) *NotificationService {
	s.realtime = p
	return s
}

func (s *NotificationService) WithPush(p PushSender) *NotificationService {
	s.push = p
	return s
}

func (s *NotificationService) WithMailer(m Mailer) *NotificationService {
	s.mail = m
	return s
}

func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Notify records and delivers a notification. Failures are logged and
// reported as false, never returned.
func (s *NotificationService) Notify(ctx context.Context, recipientID primitive.ObjectID, typ models.NotificationType, title, message string, data map[string]interface{}) bool {
	if title == "" {
		title = typ.DefaultTitle()
	}
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        data,
		CreatedAt:   s.now(),
	}
	if err := s.deliver(ctx, n); err != nil {
		logger.ErrorLogger.WithFields(logrus.Fields{
			"recipient": recipientID.Hex(),
			"type":      typ,
		}).WithError(err).Error("failed to save notification")
		return false
	}
	return true
}

func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) error {
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}

	fields := logrus.Fields{"recipient": n.RecipientID.Hex(), "type": n.Type}
	if s.realtime != nil {
		if err := s.realtime.SendToUser(n.RecipientID, *n); err != nil {
			logger.InfoLogger.WithFields(fields).Debugf("realtime delivery skipped: %v", err)
		}
	}
	if s.push == nil && s.mail == nil {
		return nil
	}

	user, err := s.users.GetUser(ctx, n.RecipientID)
	if err != nil {
		logger.ErrorLogger.WithFields(fields).WithError(err).Warn("recipient lookup failed")
		return nil
	}
	if s.push != nil && user.FCMToken != "" {
		if err := s.push.Send(ctx, user.FCMToken, n); err != nil {
			logger.ErrorLogger.WithFields(fields).WithError(err).Warn("push delivery failed")
		}
	}
	if s.mail != nil && user.Email != "" && emailed(n.Type) {
		body := fmt.Sprintf("Hi %s,\n\n%s\n\nThe HomelyEats team", user.Name, n.Message)
		if err := s.mail.Send(user.Email, n.Title, body); err != nil {
			logger.ErrorLogger.WithFields(fields).WithError(err).Warn("email delivery failed")
		}
	}
	return nil
}

func emailed(t models.NotificationType) bool {
	return t != models.NotificationReview && t != models.NotificationSystem
}

// List returns one page of the recipient's inbox, newest first
func (s *NotificationService) List(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	items, total, err := s.notifications.ListNotifications(ctx, recipientID, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return items, models.NewPagination(total, page, limit), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.notifications.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) (*models.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, recipientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Notification not found")
	}
	return n, err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, id, recipientID primitive.ObjectID) error {
	err := s.notifications.DeleteNotification(ctx, id, recipientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "Notification not found")
	}
	return err
}

// Create posts a notification to actorID's own inbox. Lifecycle types are
// raised by the booking service only.
func (s *NotificationService) Create(ctx context.Context, actorID primitive.ObjectID, req models.CreateNotificationRequest) (*models.Notification, error) {
	if !req.Type.Valid() {
		return nil, newError(ErrValidation, "Invalid notification type")
	}
	if req.Type.Lifecycle() {
		return nil, newError(ErrValidation, "Notification type %s cannot be posted directly", req.Type)
	}
	if req.Message == "" {
		return nil, newError(ErrValidation, "Message is required")
	}

	recipientID := actorID
	if req.RecipientID != "" {
		id, err := primitive.ObjectIDFromHex(req.RecipientID)
		if err != nil {
			return nil, newError(ErrValidation, "Invalid recipient ID")
		}
		if id != actorID {
			return nil, newError(ErrForbidden, "Notifications can only be posted to your own inbox")
		}
	}

	title := req.Title
	if title == "" {
		title = req.Type.DefaultTitle()
	}
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        req.Type,
		Title:       title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   s.now(),
	}
	if err := s.deliver(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
