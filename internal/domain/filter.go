package domain

import (
	"errors"
	"time"

	"notification_center/internal/model"
)

type Filter string

const (
	FilterAll            Filter = "all"
	FilterUnread         Filter = "unread"
	FilterRead           Filter = "read"
	FilterSinceLastVisit Filter = "since_last_visit"
)

var ErrInvalidFilter = errors.New("invalid filter")

func ParseFilter(value string) (Filter, error) {
	switch Filter(value) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUnread, FilterRead, FilterSinceLastVisit:
		return Filter(value), nil
	default:
		return "", ErrInvalidFilter
	}
}

// Apply keeps list order. since_last_visit without a recorded visit keeps
// everything.
func (f Filter) Apply(list []model.Notification, lastVisit *time.Time) []model.Notification {
	result := make([]model.Notification, 0, len(list))
	for _, n := range list {
		switch f {
		case FilterUnread:
			if n.Read {
				continue
			}
		case FilterRead:
			if !n.Read {
				continue
			}
		case FilterSinceLastVisit:
			if lastVisit != nil && !n.Timestamp.After(*lastVisit) {
				continue
			}
		}
		result = append(result, n)
	}
	return result
}
