package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const notificationsPath = apiPrefix + "/notifications/notifications/"

// Notifications wraps /notifications/notifications/.
type Notifications struct {
	c *api.Client
}

// List returns all notifications of the signed-in user.
func (s *Notifications) List(ctx context.Context) ([]model.Notification, error) {
	items, err := api.GetList[model.Notification](ctx, s.c, notificationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return items, nil
}

// Unread returns notifications not yet marked read.
func (s *Notifications) Unread(ctx context.Context) ([]model.Notification, error) {
	items, err := api.GetList[model.Notification](ctx, s.c, notificationsPath+"unread/", nil)
	if err != nil {
		return nil, fmt.Errorf("listing unread notifications: %w", err)
	}
	return items, nil
}

// Recent returns the newest limit notifications.
func (s *Notifications) Recent(ctx context.Context, limit int) ([]model.Notification, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	items, err := api.GetList[model.Notification](ctx, s.c, notificationsPath+"recent/", q)
	if err != nil {
		return nil, fmt.Errorf("listing recent notifications: %w", err)
	}
	return items, nil
}

// ByType returns notifications of one type.
func (s *Notifications) ByType(ctx context.Context, t model.NotificationType) ([]model.Notification, error) {
	q := url.Values{"type": {string(t)}}
	items, err := api.GetList[model.Notification](ctx, s.c, notificationsPath+"by_type/", q)
	if err != nil {
		return nil, fmt.Errorf("listing %s notifications: %w", t, err)
	}
	return items, nil
}

// UnreadCount returns the badge number for the header.
func (s *Notifications) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := s.c.Get(ctx, notificationsPath+"unread_count/", nil, &out); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return out.UnreadCount, nil
}

// MarkRead marks one notification read.
func (s *Notifications) MarkRead(ctx context.Context, id int64) error {
	if err := s.c.Post(ctx, itemPath(notificationsPath, id)+"mark_as_read/", nil, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every notification read.
func (s *Notifications) MarkAllRead(ctx context.Context) error {
	if err := s.c.Post(ctx, notificationsPath+"mark_all_as_read/", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// Create adds a notification for the signed-in user.
func (s *Notifications) Create(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	var out model.Notification
	if err := s.c.Post(ctx, notificationsPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return &out, nil
}

// BulkCreate fans one notification out to several users.
func (s *Notifications) BulkCreate(ctx context.Context, in model.BulkNotificationInput) error {
	if err := s.c.Post(ctx, notificationsPath+"bulk_create/", in, nil); err != nil {
		return fmt.Errorf("bulk creating notifications: %w", err)
	}
	return nil
}

// Delete removes a notification.
func (s *Notifications) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(notificationsPath, id)); err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	return nil
}
