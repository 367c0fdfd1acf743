package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"notification_center/internal/model"
	"notification_center/internal/repository"
)

// persistLocked overwrites the slot with the whole list and announces the
// write. A failed write is not announced.
func (s *Service) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(s.notifications)
	if err != nil {
		s.metrics.StorageErrors.WithLabelValues("encode").Inc()
		s.log.Warn("encode notifications failed", zap.Error(err))
		return
	}
	value := string(payload)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storageTimeout)
	defer cancel()

	if err := s.slots.Set(ctx, s.notificationsKey, value); err != nil {
		s.metrics.StorageErrors.WithLabelValues("set").Inc()
		s.log.Warn("persist notifications failed", zap.Error(err))
		return
	}
	if err := s.feed.Publish(ctx, repository.Change{Key: s.notificationsKey, Value: &value, Origin: s.origin}); err != nil {
		s.metrics.StorageErrors.WithLabelValues("publish").Inc()
		s.log.Warn("publish notifications change failed", zap.Error(err))
	}
}

func decodeList(raw string) ([]model.Notification, error) {
	var list []model.Notification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
