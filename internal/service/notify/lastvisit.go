package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func (s *Service) UpdateLastVisit(ctx context.Context) time.Time {
	now := s.now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storageTimeout)
	defer cancel()
	if err := s.slots.Set(ctx, s.lastVisitKey, now.Format(time.RFC3339Nano)); err != nil {
		s.metrics.StorageErrors.WithLabelValues("set").Inc()
		s.log.Warn("persist last visit failed", zap.Error(err))
	}
	return now
}

// LastVisit returns nil when no visit was recorded or the value is unreadable.
func (s *Service) LastVisit(ctx context.Context) *time.Time {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storageTimeout)
	defer cancel()
	raw, ok, err := s.slots.Get(ctx, s.lastVisitKey)
	if err != nil {
		s.metrics.StorageErrors.WithLabelValues("get").Inc()
		s.log.Warn("load last visit failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	visit, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &visit
}
