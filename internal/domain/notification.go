package domain

import (
	"errors"
	"time"
)

const (
	NotificationTypeInfo             = "info"
	NotificationTypeWarning          = "warning"
	NotificationTypeSuccess          = "success"
	NotificationTypeError            = "error"
	NotificationTypeUserRegistration = "user_registration"
	NotificationTypeAppointment      = "appointment"
)

const maxTypeLength = 64

var ErrInvalidNotificationType = errors.New("invalid notification type")

// IsValidNotificationType accepts any short lowercase tag. The set is open;
// known constants only drive presentation.
func IsValidNotificationType(value string) bool {
	if value == "" || len(value) > maxTypeLength {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

// Lifetime is either persistent or transient with a time to live.
type Lifetime struct {
	TTL time.Duration
}

var Persistent = Lifetime{}

func Transient(ttl time.Duration) Lifetime {
	return Lifetime{TTL: ttl}
}

func (l Lifetime) IsTransient() bool {
	return l.TTL > 0
}

// LifetimeOf maps the producer's temporary flag: anything but an explicit
// false is transient.
func LifetimeOf(temporary *bool, ttl time.Duration) Lifetime {
	if temporary != nil && !*temporary {
		return Persistent
	}
	return Transient(ttl)
}
