package memory

import (
	"sync"

	"go.uber.org/zap"
)

type Store struct {
	mu    sync.RWMutex
	slots map[string]string
	log   *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{slots: make(map[string]string), log: logger}
}
