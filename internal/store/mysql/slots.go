package mysql

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"notification_center/internal/db"
)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.queries.GetSlot(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.log.Error("sql get slot failed", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.queries.UpsertSlot(ctx, db.UpsertSlotParams{SlotKey: key, SlotValue: value}); err != nil {
		s.log.Error("sql upsert slot failed", zap.String("key", key), zap.Int("bytes", len(value)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.queries.DeleteSlot(ctx, key); err != nil {
		s.log.Error("sql delete slot failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
