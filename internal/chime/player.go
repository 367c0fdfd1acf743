package chime

import (
	"context"
	"errors"

	"notification_center/internal/config"
	"notification_center/internal/sse"
)

var ErrDropped = errors.New("chime: event dropped")

type Player interface {
	Play(ctx context.Context, tone Tone) error
}

type Nop struct{}

func (Nop) Play(context.Context, Tone) error { return nil }

// HubPlayer hands the tone to connected browsers on the chime topic; they
// synthesise it locally.
type HubPlayer struct {
	hub *sse.Hub
}

func NewPlayer(cfg *config.Config, hub *sse.Hub) Player {
	if !cfg.ChimeEnabled {
		return Nop{}
	}
	return &HubPlayer{hub: hub}
}

func (p *HubPlayer) Play(ctx context.Context, tone Tone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.hub.Broadcast(sse.Event{Topic: sse.TopicChime, Name: "chime", Data: tone.descriptor()}) {
		return ErrDropped
	}
	return nil
}
