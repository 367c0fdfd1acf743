package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"notification_center/internal/chime"
	"notification_center/internal/config"
	"notification_center/internal/metrics"
	"notification_center/internal/repository"
	"notification_center/internal/sse"
	"notification_center/internal/store/memory"
)

const (
	testKey      = "admin_notifications"
	testVisitKey = "admin_notifications_last_visit"
)

type deps struct {
	slots  repository.SlotStore
	feed   repository.ChangeFeed
	hub    *sse.Hub
	player chime.Player
	cfg    func(*config.Config)
}

func testConfig() *config.Config {
	return &config.Config{
		NotificationsKey: testKey,
		LastVisitKey:     testVisitKey,
		MaxNotifications: 10,
		TransientTTL:     time.Hour,
		StorageTimeout:   time.Second,
		ChimeFrequency:   880,
		ChimeDuration:    250 * time.Millisecond,
	}
}

func newTestService(t *testing.T, d deps) *Service {
	t.Helper()
	cfg := testConfig()
	if d.cfg != nil {
		d.cfg(cfg)
	}
	if d.slots == nil {
		d.slots = memory.New(zap.NewNop())
	}
	if d.feed == nil {
		d.feed = memory.NewBus()
	}
	if d.hub == nil {
		d.hub = sse.NewHub()
	}
	if d.player == nil {
		d.player = chime.Nop{}
	}
	svc := NewService(cfg, d.slots, d.feed, d.hub, d.player, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	t.Cleanup(svc.Close)
	return svc
}

type countingPlayer struct {
	plays atomic.Int32
	err   error
	panic bool
}

func (p *countingPlayer) Play(context.Context, chime.Tone) error {
	p.plays.Add(1)
	if p.panic {
		panic("no audio device")
	}
	return p.err
}

type slotStoreMock struct {
	mock.Mock
}

func (m *slotStoreMock) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *slotStoreMock) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *slotStoreMock) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type feedMock struct {
	mock.Mock
}

func (m *feedMock) Publish(ctx context.Context, change repository.Change) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *feedMock) Listen(ctx context.Context, handle func(repository.Change)) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}
