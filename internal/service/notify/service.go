package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notification_center/internal/chime"
	"notification_center/internal/config"
	"notification_center/internal/domain"
	"notification_center/internal/metrics"
	"notification_center/internal/model"
	"notification_center/internal/repository"
	"notification_center/internal/sse"
)

// Notifier is what producers and the HTTP layer depend on. None of the
// operations report failures: storage, feed and chime errors are logged and
// swallowed, and the in-memory list stays authoritative.
type Notifier interface {
	Add(ctx context.Context, input model.NotificationInput) model.Notification
	Remove(ctx context.Context, id int64)
	ClearAll(ctx context.Context)
	MarkAsRead(ctx context.Context, id int64)
	MarkAllAsRead(ctx context.Context)
	UnreadCount() int
	List() []model.Notification
	Snapshot() model.Snapshot
	Filter(ctx context.Context, filter domain.Filter) []model.Notification
	UpdateLastVisit(ctx context.Context) time.Time
	LastVisit(ctx context.Context) *time.Time
}

// Service is a bounded, newest-first notification list mirrored to one slot of
// a SlotStore. Instances sharing the slot converge through the ChangeFeed by
// replacing their list with whatever was written last.
type Service struct {
	slots   repository.SlotStore
	feed    repository.ChangeFeed
	hub     *sse.Hub
	player  chime.Player
	tone    chime.Tone
	metrics *metrics.Metrics
	log     *zap.Logger

	origin           string
	notificationsKey string
	lastVisitKey     string
	maxNotifications int
	transientTTL     time.Duration
	storageTimeout   time.Duration
	now              func() time.Time

	mu            sync.Mutex
	notifications []model.Notification
	lastID        int64
	timers        map[int64]*time.Timer
	closed        bool
}

var _ Notifier = (*Service)(nil)

func NewService(cfg *config.Config, slots repository.SlotStore, feed repository.ChangeFeed, hub *sse.Hub, player chime.Player, m *metrics.Metrics, logger *zap.Logger) *Service {
	origin := cfg.InstanceID
	if origin == "" {
		origin = uuid.NewString()
	}
	maxNotifications := cfg.MaxNotifications
	if maxNotifications <= 0 {
		maxNotifications = 10
	}
	storageTimeout := cfg.StorageTimeout
	if storageTimeout <= 0 {
		storageTimeout = 2 * time.Second
	}
	transientTTL := cfg.TransientTTL
	if transientTTL <= 0 {
		transientTTL = 5 * time.Second
	}

	s := &Service{
		slots:            slots,
		feed:             feed,
		hub:              hub,
		player:           player,
		tone:             chime.ToneFromConfig(cfg),
		metrics:          m,
		log:              logger.With(zap.String("origin", origin)),
		origin:           origin,
		notificationsKey: cfg.NotificationsKey,
		lastVisitKey:     cfg.LastVisitKey,
		maxNotifications: maxNotifications,
		transientTTL:     transientTTL,
		storageTimeout:   storageTimeout,
		now:              time.Now,
		notifications:    []model.Notification{},
		timers:           make(map[int64]*time.Timer),
	}
	s.load(context.Background())
	return s
}

func (s *Service) Origin() string {
	return s.origin
}

func (s *Service) load(ctx context.Context) {
	list, ok := s.readSlot(ctx, "load")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(list)
	s.observeLocked()
}

// readSlot fetches and decodes the stored list. ok is false when the store
// failed or held something unreadable; an absent slot is an empty list.
func (s *Service) readSlot(ctx context.Context, op string) ([]model.Notification, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	raw, found, err := s.slots.Get(ctx, s.notificationsKey)
	if err != nil {
		s.metrics.StorageErrors.WithLabelValues(op).Inc()
		s.log.Warn("read notifications failed", zap.String("op", op), zap.Error(err))
		return nil, false
	}
	if !found {
		return []model.Notification{}, true
	}
	list, err := decodeList(raw)
	if err != nil {
		s.log.Debug("stored notifications unreadable", zap.String("op", op), zap.Error(err))
		return nil, false
	}
	return list, true
}

// Close stops pending expiry timers. Records they would have removed stay.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
