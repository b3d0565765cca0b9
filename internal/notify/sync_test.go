package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/signify-health/signify-client/internal/models"
)

type stubGateway struct {
	endpoints []string
	fn        func(method, endpoint string, body, out any) error
}

func (g *stubGateway) JSON(_ context.Context, method, endpoint string, body, out any) error {
	g.endpoints = append(g.endpoints, endpoint)
	if g.fn == nil {
		return nil
	}
	return g.fn(method, endpoint, body, out)
}

func respondJSON(out any, payload string) error {
	return json.Unmarshal([]byte(payload), out)
}

func TestListLiveFeed(t *testing.T) {
	gw := &stubGateway{fn: func(method, endpoint string, body, out any) error {
		if endpoint != "/notifications/user/u-1" {
			t.Fatalf("unexpected endpoint %q", endpoint)
		}
		return respondJSON(out, `[
			{"user_notification_id":"n-1","user_id":"u-1","title":"A","is_read":false},
			{"user_notification_id":"n-2","user_id":"u-1","title":"B","is_read":true}
		]`)
	}}
	svc := NewService(gw)

	feed := svc.List(context.Background(), "u-1")
	if feed.Stale {
		t.Fatalf("live fetch must not be stale")
	}
	if len(feed.Items) != 2 {
		t.Fatalf("unexpected feed %+v", feed.Items)
	}
	if feed.Unread() != 1 {
		t.Fatalf("unread = %d, want 1", feed.Unread())
	}
}

func TestListFallsBackTagged(t *testing.T) {
	gw := &stubGateway{fn: func(method, endpoint string, body, out any) error {
		return errors.New("backend down")
	}}
	svc := NewService(gw)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	feed := svc.List(context.Background(), "u-1")
	if !feed.Stale {
		t.Fatalf("fallback feed must be tagged stale")
	}
	if len(feed.Items) != 3 {
		t.Fatalf("expected the sample feed, got %+v", feed.Items)
	}
	if feed.Unread() != 2 {
		t.Fatalf("sample feed unread = %d, want 2", feed.Unread())
	}
	if got := feed.Items[0].CreatedAt; !got.Equal(now.Add(-10 * time.Minute)) {
		t.Fatalf("sample timestamps must be relative to now, got %v", got)
	}
	for _, n := range feed.Items {
		if n.UserID != "u-1" {
			t.Fatalf("sample entry not addressed to the user: %+v", n)
		}
	}
}

func TestUnreadCountMatchesList(t *testing.T) {
	gw := &stubGateway{fn: func(method, endpoint string, body, out any) error {
		return respondJSON(out, `[
			{"user_notification_id":"n-1","is_read":false},
			{"user_notification_id":"n-2","is_read":false},
			{"user_notification_id":"n-3","is_read":true}
		]`)
	}}
	svc := NewService(gw)
	if got := svc.UnreadCount(context.Background(), "u-1"); got != 2 {
		t.Fatalf("UnreadCount = %d, want 2", got)
	}
}

func TestMarkReadFlipsExactlyOne(t *testing.T) {
	gw := &stubGateway{fn: func(method, endpoint string, body, out any) error {
		if !strings.HasSuffix(endpoint, "/notifications/user/n-2/read") {
			return respondJSON(out, `[
				{"user_notification_id":"n-1","is_read":false},
				{"user_notification_id":"n-2","is_read":false}
			]`)
		}
		return respondJSON(out, `{"success":true,"message":"ok"}`)
	}}
	svc := NewService(gw)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	feed := svc.List(context.Background(), "u-1")
	if err := svc.MarkRead(context.Background(), feed, "n-2"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}

	if feed.Items[0].IsRead || feed.Items[0].ReadAt != nil {
		t.Fatalf("untargeted entry was flipped: %+v", feed.Items[0])
	}
	if !feed.Items[1].IsRead {
		t.Fatalf("target entry not flipped: %+v", feed.Items[1])
	}
	if feed.Items[1].ReadAt == nil || !feed.Items[1].ReadAt.Equal(now) {
		t.Fatalf("read_at not stamped with now: %+v", feed.Items[1].ReadAt)
	}
	if feed.Unread() != 1 {
		t.Fatalf("unread = %d, want 1", feed.Unread())
	}
}

func TestMarkReadFailureLeavesFeedUntouched(t *testing.T) {
	feed := &Feed{Items: []models.UserNotification{
		{UserNotificationID: "n-1"},
	}}

	gw := &stubGateway{fn: func(method, endpoint string, body, out any) error {
		return errors.New("backend down")
	}}
	if err := NewService(gw).MarkRead(context.Background(), feed, "n-1"); err == nil {
		t.Fatalf("expected error from failed receipt")
	}
	if feed.Items[0].IsRead || feed.Items[0].ReadAt != nil {
		t.Fatalf("no optimistic flip without confirmation: %+v", feed.Items[0])
	}

	// A polite refusal counts as failure too.
	gw = &stubGateway{fn: func(method, endpoint string, body, out any) error {
		return respondJSON(out, `{"success":false,"message":"unknown notification"}`)
	}}
	if err := NewService(gw).MarkRead(context.Background(), feed, "n-1"); err == nil {
		t.Fatalf("expected error for success=false")
	}
	if feed.Items[0].IsRead {
		t.Fatalf("rejected receipt must not flip the entry")
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Minute), "10 minutes ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{now.Add(-26 * time.Hour), "1 days ago"},
	}
	for _, c := range cases {
		if got := TimeAgo(c.at, now); got != c.want {
			t.Fatalf("TimeAgo(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}
