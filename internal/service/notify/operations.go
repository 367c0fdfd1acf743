package notify

import (
	"context"
	"maps"
	"time"

	"go.uber.org/zap"

	"notification_center/internal/domain"
	"notification_center/internal/metrics"
	"notification_center/internal/model"
	"notification_center/internal/sse"
)

func (s *Service) Add(ctx context.Context, input model.NotificationInput) model.Notification {
	s.mu.Lock()
	now := s.now().UTC().Truncate(time.Millisecond)
	created := model.Notification{
		ID:        s.nextIDLocked(now),
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Details:   maps.Clone(input.Details),
		Timestamp: now,
		Temporary: input.Temporary,
		Silent:    input.Silent,
	}
	if created.Temporary != nil {
		created.Temporary = model.Bool(*created.Temporary)
	}

	list := make([]model.Notification, 0, len(s.notifications)+1)
	list = append(list, created)
	list = append(list, s.notifications...)
	if len(list) > s.maxNotifications {
		for _, evicted := range list[s.maxNotifications:] {
			s.cancelTimerLocked(evicted.ID)
			s.metrics.Removed.WithLabelValues(metrics.ReasonEvicted).Inc()
		}
		list = list[:s.maxNotifications]
	}
	s.notifications = list
	s.persistLocked(ctx)

	if lifetime := domain.LifetimeOf(created.Temporary, s.transientTTL); lifetime.IsTransient() {
		s.scheduleLocked(created.ID, lifetime.TTL)
	}
	s.hub.Broadcast(sse.Event{
		Topic: sse.TopicBanner,
		Name:  "notification",
		ID:    formatID(created.ID),
		Data:  created,
	})
	s.publishLocked()
	s.mu.Unlock()

	s.metrics.Added.WithLabelValues(created.Type).Inc()
	if !created.Silent {
		s.playChime()
	}
	s.log.Debug("notification added",
		zap.Int64("id", created.ID),
		zap.String("type", created.Type),
		zap.String("title", created.Title),
	)
	return created
}

func (s *Service) Remove(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked(id)
	if !s.removeLocked(id) {
		return
	}
	s.metrics.Removed.WithLabelValues(metrics.ReasonExplicit).Inc()
	s.persistLocked(ctx)
	s.publishLocked()
}

func (s *Service) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.cancelTimerLocked(id)
	}
	s.metrics.Removed.WithLabelValues(metrics.ReasonCleared).Add(float64(len(s.notifications)))
	s.notifications = []model.Notification{}
	s.persistLocked(ctx)
	s.publishLocked()
}

func (s *Service) MarkAsRead(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Read {
			return
		}
		s.notifications[i].Read = true
		s.persistLocked(ctx)
		s.publishLocked()
		return
	}
}

func (s *Service) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
		}
	}
	if !changed {
		return
	}
	s.persistLocked(ctx)
	s.publishLocked()
}

func (s *Service) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked()
}

func (s *Service) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Service) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) Filter(ctx context.Context, filter domain.Filter) []model.Notification {
	var lastVisit *time.Time
	if filter == domain.FilterSinceLastVisit {
		lastVisit = s.LastVisit(ctx)
	}
	return filter.Apply(s.List(), lastVisit)
}

func (s *Service) removeLocked(id int64) bool {
	for i, n := range s.notifications {
		if n.ID == id {
			list := make([]model.Notification, 0, len(s.notifications)-1)
			list = append(list, s.notifications[:i]...)
			list = append(list, s.notifications[i+1:]...)
			s.notifications = list
			return true
		}
	}
	return false
}

func (s *Service) unreadLocked() int {
	unread := 0
	for _, n := range s.notifications {
		if !n.Read {
			unread++
		}
	}
	return unread
}

func (s *Service) copyLocked() []model.Notification {
	list := make([]model.Notification, len(s.notifications))
	copy(list, s.notifications)
	return list
}

func (s *Service) snapshotLocked() model.Snapshot {
	return model.Snapshot{Notifications: s.copyLocked(), Unread: s.unreadLocked()}
}

func (s *Service) observeLocked() {
	s.metrics.Current.Set(float64(len(s.notifications)))
	s.metrics.Unread.Set(float64(s.unreadLocked()))
}

// publishLocked refreshes gauges and pushes the current list to reactive
// subscribers.
func (s *Service) publishLocked() {
	s.observeLocked()
	s.hub.Broadcast(sse.Event{
		Topic:    sse.TopicNotifications,
		Name:     "snapshot",
		Data:     s.snapshotLocked(),
		Coalesce: true,
	})
}

func (s *Service) playChime() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.metrics.ChimeFailures.Inc()
				s.log.Debug("chime panicked", zap.Any("recovered", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.tone.Duration+time.Second)
		defer cancel()
		if err := s.player.Play(ctx, s.tone); err != nil {
			s.metrics.ChimeFailures.Inc()
			s.log.Debug("chime failed", zap.Error(err))
		}
	}()
}
