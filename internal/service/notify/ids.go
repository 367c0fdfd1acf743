package notify

import "time"

// nextIDLocked keeps ids close to creation time in milliseconds while
// guaranteeing they strictly increase within this instance.
func (s *Service) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Service) observeIDsLocked() {
	for _, n := range s.notifications {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}
}
