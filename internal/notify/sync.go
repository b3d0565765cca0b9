// Package notify synchronizes community-alert notifications: fetching a
// user's feed, counting unread entries, and posting read receipts with
// an optimistic local flip.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/signify-health/signify-client/internal/models"
)

// Gateway performs authenticated JSON round-trips.
type Gateway interface {
	JSON(ctx context.Context, method, endpoint string, body, out any) error
}

// Feed is one fetch of a user's notifications. Stale marks fallback
// content substituted after a fetch failure, so callers can tell an
// outage from live data while still having something to show.
type Feed struct {
	Items []models.UserNotification
	Stale bool
}

// Unread counts entries not yet read.
func (f *Feed) Unread() int {
	count := 0
	for _, n := range f.Items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// mark flips exactly the target entry from unread to read and stamps
// read_at.
// Reports whether an unread entry was found.
func (f *Feed) mark(id string, at time.Time) bool {
	for i := range f.Items {
		if f.Items[i].UserNotificationID == id && !f.Items[i].IsRead {
			f.Items[i].IsRead = true
			f.Items[i].ReadAt = &at
			return true
		}
	}
	return false
}

// Service synchronizes notification state with the backend.
type Service struct {
	gw  Gateway
	now func() time.Time
}

// NewService builds a notification service over the gateway.
func NewService(gw Gateway) *Service {
	return &Service{
		gw:  gw,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// List fetches the user's notifications. A fetch failure does not
// propagate: the feed falls back to sample content tagged Stale so the
// screen stays populated during an outage.
func (s *Service) List(ctx context.Context, userID string) *Feed {
	var items []models.UserNotification
	err := s.gw.JSON(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(userID), nil, &items)
	if err != nil {
		log.Printf("notify: falling back to sample feed: %v", err)
		return &Feed{Items: sampleFeed(userID, s.now()), Stale: true}
	}
	return &Feed{Items: items}
}

// UnreadCount returns the number of unread notifications, with the same
// fallback behavior as List.
func (s *Service) UnreadCount(ctx context.Context, userID string) int {
	return s.List(ctx, userID).Unread()
}

// MarkRead posts a read receipt and, only on backend confirmation, flips
// the entry in feed with the current time. A failure leaves the feed
// untouched; unlike List there is no optimistic path without
// confirmation.
func (s *Service) MarkRead(ctx context.Context, feed *Feed, id string) error {
	var result models.MarkReadResult
	endpoint := "/notifications/user/" + url.PathEscape(id) + "/read"
	if err := s.gw.JSON(ctx, http.MethodPost, endpoint, nil, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("mark read rejected: %s", result.Message)
	}
	if feed != nil {
		feed.mark(id, s.now())
	}
	return nil
}

// sampleFeed is the fallback content shown when the backend is
// unreachable, timestamped relative to now.
func sampleFeed(userID string, now time.Time) []models.UserNotification {
	readAt := now.Add(-12 * time.Hour)
	return []models.UserNotification{
		{
			UserNotificationID: "1",
			UserID:             userID,
			NotificationID:     "1",
			Title:              "New Health Survey",
			Message:            "A new health survey is available. Takes less than 2 minutes.",
			Type:               models.NotificationSurvey,
			CreatedAt:          now.Add(-10 * time.Minute),
		},
		{
			UserNotificationID: "2",
			UserID:             userID,
			NotificationID:     "2",
			Title:              "Community Health Update",
			Message:            "Increased respiratory symptoms reported in your area. Take precautions.",
			Type:               models.NotificationAlert,
			CreatedAt:          now.Add(-2 * time.Hour),
		},
		{
			UserNotificationID: "3",
			UserID:             userID,
			NotificationID:     "3",
			Title:              "Thank You",
			Message:            "Your last survey response was received. Thank you for helping your community.",
			Type:               models.NotificationInfo,
			IsRead:             true,
			CreatedAt:          now.Add(-24 * time.Hour),
			ReadAt:             &readAt,
		},
	}
}

// TimeAgo renders a notification timestamp the way the app shows it.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
