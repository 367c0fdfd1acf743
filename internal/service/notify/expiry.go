package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"notification_center/internal/metrics"
)

func (s *Service) scheduleLocked(id int64, ttl time.Duration) {
	if s.closed {
		return
	}
	s.cancelTimerLocked(id)
	s.timers[id] = time.AfterFunc(ttl, func() { s.expire(id) })
}

func (s *Service) cancelTimerLocked(id int64) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Service) expire(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, id)
	if !s.removeLocked(id) {
		return
	}
	s.metrics.Removed.WithLabelValues(metrics.ReasonExpired).Inc()
	s.log.Debug("transient notification expired", zap.Int64("id", id))
	s.persistLocked(context.Background())
	s.publishLocked()
}

// PendingExpiries reports how many expiry timers are armed.
func (s *Service) PendingExpiries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
