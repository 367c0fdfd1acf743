package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"notification_center/internal/model"
	"notification_center/internal/repository"
)

// Sync applies changes written by other instances until ctx is done or the
// feed fails.
func (s *Service) Sync(ctx context.Context) error {
	return s.feed.Listen(ctx, s.applyChange)
}

// SyncForever keeps Sync running until ctx is done, redialing the feed with
// exponential backoff. Before every reconnect the slot is read again so
// writes made while the feed was down still reach this instance.
func (s *Service) SyncForever(ctx context.Context, initialWait, maxWait time.Duration) {
	if initialWait <= 0 {
		initialWait = 500 * time.Millisecond
	}
	if maxWait < initialWait {
		maxWait = initialWait
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialWait
	b.MaxInterval = maxWait
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			s.reload(ctx)
		}
		started := time.Now()
		err := s.Sync(ctx)
		if ctx.Err() != nil {
			return
		}
		// A feed that stayed up for a while starts over at the short delay.
		if time.Since(started) > maxWait {
			b.Reset()
		}
		wait := b.NextBackOff()
		s.log.Warn("change feed stopped, reconnecting",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_in", wait),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// reload replaces the list with the stored one and announces it.
func (s *Service) reload(ctx context.Context) {
	list, ok := s.readSlot(ctx, "reload")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(list)
	s.metrics.SyncReloads.Inc()
	s.publishLocked()
	s.log.Debug("notifications reloaded from store", zap.Int("count", len(s.notifications)))
}

func (s *Service) applyChange(change repository.Change) {
	if change.Origin == s.origin || change.Key != s.notificationsKey {
		return
	}

	list := []model.Notification{}
	if change.Value != nil {
		parsed, err := decodeList(*change.Value)
		if err != nil {
			s.log.Debug("ignoring unreadable notifications change", zap.String("from", change.Origin), zap.Error(err))
			return
		}
		list = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(list)
	s.metrics.SyncReloads.Inc()
	s.publishLocked()
	s.log.Debug("notifications reloaded", zap.String("from", change.Origin), zap.Int("count", len(s.notifications)))
}

// replaceLocked swaps the list wholesale. Timers of records that are gone are
// cancelled; the survivors keep theirs.
func (s *Service) replaceLocked(list []model.Notification) {
	// The replacement is exact up to the bound. A writer with a larger limit
	// can store more; this instance keeps only the newest MaxNotifications.
	if len(list) > s.maxNotifications {
		list = list[:s.maxNotifications]
	}
	present := make(map[int64]struct{}, len(list))
	for _, n := range list {
		present[n.ID] = struct{}{}
	}
	for id := range s.timers {
		if _, ok := present[id]; !ok {
			s.cancelTimerLocked(id)
		}
	}
	s.notifications = list
	s.observeIDsLocked()
}
