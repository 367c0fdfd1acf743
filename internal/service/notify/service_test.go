package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notification_center/internal/chime"
	"notification_center/internal/config"
	"notification_center/internal/domain"
	"notification_center/internal/metrics"
	"notification_center/internal/model"
	"notification_center/internal/repository"
	"notification_center/internal/sse"
	"notification_center/internal/store/memory"
)

func persistent(title string) model.NotificationInput {
	return model.NotificationInput{
		Type:      domain.NotificationTypeInfo,
		Title:     title,
		Message:   "message " + title,
		Temporary: model.Bool(false),
	}
}

func TestAddKeepsListBoundedNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})

	for i := 0; i < 25; i++ {
		created := svc.Add(ctx, persistent(fmt.Sprintf("n%d", i)))
		list := svc.List()
		require.LessOrEqual(t, len(list), 10)
		require.Equal(t, created.ID, list[0].ID)
		require.Equal(t, fmt.Sprintf("n%d", i), list[0].Title)
	}
	require.Len(t, svc.List(), 10)
}

func TestAddIncreasesUnreadByOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	svc.Add(ctx, persistent("a"))
	svc.MarkAsRead(ctx, svc.List()[0].ID)

	before := svc.UnreadCount()
	svc.Add(ctx, persistent("b"))
	require.Equal(t, before+1, svc.UnreadCount())
}

func TestAddStampsRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	fixed := time.Date(2024, 3, 9, 10, 11, 12, 345678901, time.UTC)
	svc.now = func() time.Time { return fixed }

	created := svc.Add(ctx, model.NotificationInput{
		Type:    domain.NotificationTypeWarning,
		Title:   "Low stock",
		Message: "Lavender oil below threshold",
		Details: map[string]string{"SKU": "LAV-10"},
	})
	require.Equal(t, fixed.UnixMilli(), created.ID)
	require.Equal(t, fixed.Truncate(time.Millisecond), created.Timestamp)
	require.False(t, created.Read)
	require.Nil(t, created.Temporary)
	require.Equal(t, "LAV-10", created.Details["SKU"])
}

func TestIDsStrictlyIncreaseUnderFrozenClock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	for i := 0; i < 5; i++ {
		svc.Add(ctx, persistent("same millisecond"))
	}
	list := svc.List()
	for i := 1; i < len(list); i++ {
		require.Greater(t, list[i-1].ID, list[i].ID)
	}
	require.Equal(t, fixed.UnixMilli(), list[len(list)-1].ID)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	svc := newTestService(t, deps{slots: slots})
	created := svc.Add(ctx, persistent("a"))
	svc.Add(ctx, persistent("b"))

	svc.MarkAsRead(ctx, created.ID)
	once := svc.List()
	storedOnce, _, _ := slots.Get(ctx, testKey)

	svc.MarkAsRead(ctx, created.ID)
	require.Equal(t, once, svc.List())
	storedTwice, _, _ := slots.Get(ctx, testKey)
	require.Equal(t, storedOnce, storedTwice)
	require.Equal(t, 1, svc.UnreadCount())

	svc.MarkAsRead(ctx, 424242)
	require.Equal(t, once, svc.List())
}

func TestRemoveTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	a := svc.Add(ctx, persistent("a"))
	svc.Add(ctx, persistent("b"))

	svc.Remove(ctx, a.ID)
	after := svc.List()
	require.Len(t, after, 1)

	svc.Remove(ctx, a.ID)
	require.Equal(t, after, svc.List())
}

func TestMarkAllAsReadAndClearAll(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	svc := newTestService(t, deps{slots: slots, cfg: func(c *config.Config) { c.TransientTTL = time.Minute }})

	svc.Add(ctx, persistent("a"))
	svc.Add(ctx, model.NotificationInput{Type: "info", Title: "transient", Message: "m"})
	require.Equal(t, 2, svc.UnreadCount())
	require.Equal(t, 1, svc.PendingExpiries())

	svc.MarkAllAsRead(ctx)
	require.Zero(t, svc.UnreadCount())

	svc.ClearAll(ctx)
	require.Empty(t, svc.List())
	require.Zero(t, svc.PendingExpiries())
	stored, ok, err := slots.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", stored)
}

func TestTransientNotificationsExpire(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{cfg: func(c *config.Config) { c.TransientTTL = 50 * time.Millisecond }})

	unset := svc.Add(ctx, model.NotificationInput{Type: "info", Title: "unset", Message: "m"})
	explicit := svc.Add(ctx, model.NotificationInput{Type: "info", Title: "true", Message: "m", Temporary: model.Bool(true)})
	kept := svc.Add(ctx, persistent("kept"))

	require.Eventually(t, func() bool {
		return len(svc.List()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	list := svc.List()
	require.Equal(t, kept.ID, list[0].ID)
	for _, n := range list {
		require.NotEqual(t, unset.ID, n.ID)
		require.NotEqual(t, explicit.ID, n.ID)
	}
	time.Sleep(100 * time.Millisecond)
	require.Len(t, svc.List(), 1)
	require.Zero(t, svc.PendingExpiries())
}

func TestBareConfigUsesDefaults(t *testing.T) {
	cfg := &config.Config{NotificationsKey: testKey, LastVisitKey: testVisitKey}
	svc := NewService(cfg, memory.New(zap.NewNop()), memory.NewBus(), sse.NewHub(), chime.Nop{}, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	t.Cleanup(svc.Close)

	require.Equal(t, 5*time.Second, svc.transientTTL)
	require.Equal(t, 10, svc.maxNotifications)
	require.Equal(t, 2*time.Second, svc.storageTimeout)

	svc.Add(context.Background(), model.NotificationInput{Type: "info", Title: "unset", Message: "m"})
	require.Equal(t, 1, svc.PendingExpiries())
}

func TestRemoveCancelsExpiryTimer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})

	created := svc.Add(ctx, model.NotificationInput{Type: "info", Title: "t", Message: "m"})
	require.Equal(t, 1, svc.PendingExpiries())

	svc.Remove(ctx, created.ID)
	require.Zero(t, svc.PendingExpiries())
}

func TestEvictionCancelsExpiryTimer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{cfg: func(c *config.Config) { c.MaxNotifications = 2 }})

	svc.Add(ctx, model.NotificationInput{Type: "info", Title: "oldest", Message: "m"})
	svc.Add(ctx, persistent("b"))
	svc.Add(ctx, persistent("c"))

	require.Len(t, svc.List(), 2)
	require.Zero(t, svc.PendingExpiries())
}

func TestInquiryScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{cfg: func(c *config.Config) { c.TransientTTL = 50 * time.Millisecond }})
	before := svc.UnreadCount()

	svc.Add(ctx, model.NotificationInput{
		Type:      "info",
		Title:     "New Inquiry Received",
		Message:   "Jane submitted an inquiry: Pricing",
		Details:   map[string]string{"Email": "jane@x.com"},
		Temporary: model.Bool(false),
	})

	list := svc.List()
	require.Equal(t, "New Inquiry Received", list[0].Title)
	require.False(t, list[0].Read)
	require.Equal(t, before+1, svc.UnreadCount())

	time.Sleep(150 * time.Millisecond)
	require.Len(t, svc.List(), 1)
	require.Equal(t, "jane@x.com", svc.List()[0].Details["Email"])
}

func TestFullListDropsOldest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	for i := 0; i < 10; i++ {
		svc.Add(ctx, persistent(fmt.Sprintf("n%d", i)))
	}
	oldest := svc.List()[9]
	require.Equal(t, "n0", oldest.Title)

	svc.Add(ctx, persistent("n10"))

	list := svc.List()
	require.Len(t, list, 10)
	require.Equal(t, "n10", list[0].Title)
	for _, n := range list {
		require.NotEqual(t, oldest.ID, n.ID)
	}
}

func TestPersistThenReloadReproducesList(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	first := newTestService(t, deps{slots: slots})
	first.Add(ctx, persistent("a"))
	first.Add(ctx, model.NotificationInput{Type: "success", Title: "b", Message: "m", Details: map[string]string{"Order": "#12"}, Silent: true})
	first.Add(ctx, persistent("c"))
	first.MarkAsRead(ctx, first.List()[1].ID)

	reloaded := newTestService(t, deps{slots: slots})
	require.Equal(t, first.List(), reloaded.List())

	next := reloaded.Add(ctx, persistent("d"))
	require.Greater(t, next.ID, first.List()[0].ID)
}

func TestCorruptStoredListStartsEmpty(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	require.NoError(t, slots.Set(ctx, testKey, "{not json"))

	svc := newTestService(t, deps{slots: slots})
	require.Empty(t, svc.List())
	require.Zero(t, svc.UnreadCount())
}

func TestStoredListLargerThanLimitIsTruncated(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	list := make([]model.Notification, 12)
	for i := range list {
		list[i] = model.Notification{ID: int64(100 - i), Type: "info", Title: fmt.Sprint(i)}
	}
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	require.NoError(t, slots.Set(ctx, testKey, string(raw)))

	svc := newTestService(t, deps{slots: slots})
	require.Len(t, svc.List(), 10)
	require.Equal(t, int64(100), svc.List()[0].ID)
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	slots := &slotStoreMock{}
	slots.On("Get", mock.Anything, testKey).Return("", false, errors.New("quota exceeded")).Once()
	slots.On("Set", mock.Anything, testKey, mock.Anything).Return(errors.New("quota exceeded"))
	feed := &feedMock{}

	svc := newTestService(t, deps{slots: slots, feed: feed})
	created := svc.Add(ctx, persistent("a"))
	svc.MarkAsRead(ctx, created.ID)

	list := svc.List()
	require.Len(t, list, 1)
	require.True(t, list[0].Read)
	require.Equal(t, float64(2), testutil.ToFloat64(svc.metrics.StorageErrors.WithLabelValues("set")))
	require.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.StorageErrors.WithLabelValues("load")))
	feed.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	slots.AssertExpectations(t)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	feed := &feedMock{}
	feed.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newTestService(t, deps{feed: feed})
	svc.Add(ctx, persistent("a"))

	require.Len(t, svc.List(), 1)
	require.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.StorageErrors.WithLabelValues("publish")))
	feed.AssertExpectations(t)
}

func TestAddPublishesChangeWithOrigin(t *testing.T) {
	ctx := context.Background()
	feed := &feedMock{}
	feed.On("Publish", mock.Anything, mock.MatchedBy(func(c repository.Change) bool {
		return c.Key == testKey && c.Value != nil && c.Origin != ""
	})).Return(nil).Once()

	svc := newTestService(t, deps{feed: feed})
	svc.Add(ctx, persistent("a"))
	feed.AssertExpectations(t)
}

func TestChimePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("silent suppresses chime", func(t *testing.T) {
		player := &countingPlayer{}
		svc := newTestService(t, deps{player: player})
		svc.Add(ctx, model.NotificationInput{Type: "info", Title: "quiet", Message: "m", Silent: true})
		time.Sleep(50 * time.Millisecond)
		require.Zero(t, player.plays.Load())
	})

	t.Run("audible plays once", func(t *testing.T) {
		player := &countingPlayer{}
		svc := newTestService(t, deps{player: player})
		svc.Add(ctx, persistent("loud"))
		require.Eventually(t, func() bool { return player.plays.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		require.Equal(t, int32(1), player.plays.Load())
	})

	t.Run("failures are ignored", func(t *testing.T) {
		for _, player := range []*countingPlayer{{err: errors.New("autoplay blocked")}, {panic: true}} {
			svc := newTestService(t, deps{player: player})
			created := svc.Add(ctx, persistent("still delivered"))
			require.Equal(t, created.ID, svc.List()[0].ID)
			require.Eventually(t, func() bool {
				return testutil.ToFloat64(svc.metrics.ChimeFailures) == 1
			}, time.Second, 5*time.Millisecond)
		}
	})
}

func TestAddBroadcastsBannerAndSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := sse.NewHub()
	go hub.Run(ctx)
	banner := &sse.Client{Topic: sse.TopicBanner, Ch: make(chan sse.Event, 4)}
	list := &sse.Client{Topic: sse.TopicNotifications, Ch: make(chan sse.Event, 4)}
	hub.Register(banner)
	hub.Register(list)
	defer hub.Unregister(banner)
	defer hub.Unregister(list)

	svc := newTestService(t, deps{hub: hub})
	created := svc.Add(context.Background(), persistent("toast"))

	select {
	case got := <-banner.Ch:
		require.Equal(t, "notification", got.Name)
		require.Equal(t, created, got.Data)
	case <-time.After(time.Second):
		t.Fatalf("expected banner event")
	}
	select {
	case got := <-list.Ch:
		snapshot := got.Data.(model.Snapshot)
		require.Equal(t, 1, snapshot.Unread)
		require.Equal(t, created.ID, snapshot.Notifications[0].ID)
	case <-time.After(time.Second):
		t.Fatalf("expected snapshot event")
	}
}

func TestLastVisit(t *testing.T) {
	ctx := context.Background()
	slots := memory.New(zap.NewNop())
	svc := newTestService(t, deps{slots: slots})

	require.Nil(t, svc.LastVisit(ctx))

	fixed := time.Date(2024, 6, 1, 8, 30, 0, 123000000, time.UTC)
	svc.now = func() time.Time { return fixed }
	require.Equal(t, fixed, svc.UpdateLastVisit(ctx))

	got := svc.LastVisit(ctx)
	require.NotNil(t, got)
	require.True(t, fixed.Equal(*got))

	require.NoError(t, slots.Set(ctx, testVisitKey, "yesterday"))
	require.Nil(t, svc.LastVisit(ctx))
}

func TestFilterSinceLastVisit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, deps{})
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return base }
	svc.Add(ctx, persistent("before"))
	svc.now = func() time.Time { return base.Add(time.Minute) }
	svc.UpdateLastVisit(ctx)
	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	svc.Add(ctx, persistent("after"))

	got := svc.Filter(ctx, domain.FilterSinceLastVisit)
	require.Len(t, got, 1)
	require.Equal(t, "after", got[0].Title)
	require.Len(t, svc.Filter(ctx, domain.FilterAll), 2)
}
